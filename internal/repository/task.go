package repository

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/util"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TaskPageSize is the fixed number of tasks on a list page
const TaskPageSize = 10

// TaskOrdering lists the columns task lists can be sorted by
var TaskOrdering = util.Ordering{
	Columns: map[string]string{
		"id":       "tasks.id",
		"title":    "tasks.title",
		"status":   "tasks.status",
		"start":    "tasks.start_at",
		"end":      "tasks.end_at",
		"project":  "tasks.project_id",
		"assignee": "tasks.assignee_id",
		"author":   "tasks.author_id",
	},
	Default:  "id",
	Tiebreak: "tasks.id",
}

type Tasks struct {
	db *gorm.DB
}

func NewTasks(db *gorm.DB) *Tasks {
	return &Tasks{db: db}
}

// Page returns one page of tasks matching opts along with the page info.
// page may be util's "last page" marker.
func (t *Tasks) Page(ctx context.Context, opts ListOptions, page int) ([]model.Task, util.Page, error) {
	base := util.Search(opts.Query, "tasks.title", "tasks.description")(
		t.db.WithContext(ctx).Model(&model.Task{}),
	)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, util.Page{}, fmt.Errorf("failed to count tasks, %w", err)
	}

	p, err := util.NewPage(page, TaskPageSize, total)
	if err != nil {
		return nil, util.Page{}, err
	}

	order := opts.Order
	if order == "" {
		order = TaskOrdering.Clause(TaskOrdering.Default)
	}

	var tasks []model.Task

	err = base.Session(&gorm.Session{}).
		Preload("Author").
		Preload("Assignee").
		Order(order).
		Limit(p.Size).
		Offset(p.Offset()).
		Find(&tasks).
		Error
	if err != nil {
		return nil, util.Page{}, fmt.Errorf("failed to list tasks, %w", err)
	}

	return tasks, p, nil
}

func (t *Tasks) Get(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task

	err := t.db.WithContext(ctx).
		Preload("Project").
		Preload("Author").
		Preload("Assignee").
		Preload("Documents").
		First(&task, id).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &task, nil
}

// Comments returns the comments of a task, oldest first
func (t *Tasks) Comments(ctx context.Context, id uint) ([]model.Comment, error) {
	var comments []model.Comment

	err := t.db.WithContext(ctx).
		Where("task_id = ?", id).
		Order("created, id").
		Find(&comments).
		Error

	return comments, err
}

// AddComment stores a comment on an existing task
func (t *Tasks) AddComment(ctx context.Context, taskID uint, description string) (*model.Comment, error) {
	var n int64

	err := t.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", taskID).
		Count(&n).
		Error
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, ErrNotFound
	}

	c := &model.Comment{TaskID: taskID, Description: description}
	if err := t.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment, %w", err)
	}

	return c, nil
}

// Delete removes a task with its comments and document links
func (t *Tasks) Delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Select("id").First(&task, id).Error; err != nil {
			return notFound(err)
		}

		if err := deleteTaskChildren(tx, "id = ?", task.ID); err != nil {
			return err
		}

		if err := tx.Delete(&task).Error; err != nil {
			return fmt.Errorf("failed to delete task, %w", err)
		}

		return nil
	})
}

// deleteTaskChildren removes the comments and document links of the tasks
// matching the condition
func deleteTaskChildren(tx *gorm.DB, cond string, args ...any) error {
	ids := func() *gorm.DB {
		return tx.Model(&model.Task{}).Select("id").Where(cond, args...)
	}

	if err := tx.Where("task_id IN (?)", ids()).Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to delete task comments, %w", err)
	}

	if err := tx.Exec("DELETE FROM task_documents WHERE task_id IN (?)", ids()).Error; err != nil {
		return fmt.Errorf("failed to unlink task documents, %w", err)
	}

	return nil
}
