package repository

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/util"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ProjectOrdering lists the columns project lists can be sorted by
var ProjectOrdering = util.Ordering{
	Columns: map[string]string{
		"id":       "projects.id",
		"title":    "projects.title",
		"due_date": "projects.due_date",
		"closed":   "projects.is_closed",
	},
	Default:  "id",
	Tiebreak: "projects.id",
}

// ProjectSummary is a project with its task completion figures
type ProjectSummary struct {
	model.Project
	TotalTasks     int64   `json:"total_tasks"`
	CompletedTasks int64   `json:"completed_tasks"`
	Completed      float64 `json:"completed" gorm:"-"`
}

type Projects struct {
	db *gorm.DB
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

// List returns every project matching opts, each annotated with the
// share of its tasks that are no longer open
func (p *Projects) List(ctx context.Context, opts ListOptions) ([]ProjectSummary, error) {
	order := opts.Order
	if order == "" {
		order = ProjectOrdering.Clause(ProjectOrdering.Default)
	}

	var rows []ProjectSummary

	err := p.db.WithContext(ctx).
		Model(&model.Project{}).
		Select(
			"projects.*, COUNT(tasks.id) AS total_tasks, "+
				"COALESCE(SUM(CASE WHEN tasks.status NOT IN ? THEN 1 ELSE 0 END), 0) AS completed_tasks",
			model.OpenStatuses,
		).
		Joins("LEFT JOIN tasks ON tasks.project_id = projects.id").
		Scopes(util.Search(opts.Query, "projects.title", "projects.description")).
		Group("projects.id").
		Order(order).
		Scan(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects, %w", err)
	}

	for i := range rows {
		rows[i].Completed = Completion(rows[i].CompletedTasks, rows[i].TotalTasks)
	}

	return rows, nil
}

func (p *Projects) Get(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project

	err := p.db.WithContext(ctx).
		Preload("Documents").
		First(&project, id).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &project, nil
}

// Tasks returns the tasks of a project ordered by id
func (p *Projects) Tasks(ctx context.Context, id uint) ([]model.Task, error) {
	var tasks []model.Task

	err := p.db.WithContext(ctx).
		Preload("Assignee").
		Where("project_id = ?", id).
		Order("id").
		Find(&tasks).
		Error

	return tasks, err
}

// Delete removes a project together with its tasks, their comments and
// every document link of the project and its tasks. Documents themselves
// stay.
func (p *Projects) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Select("id").First(&project, id).Error; err != nil {
			return notFound(err)
		}

		if err := deleteTaskChildren(tx, "project_id = ?", id); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete project tasks, %w", err)
		}

		if err := tx.Model(&project).Association("Documents").Clear(); err != nil {
			return fmt.Errorf("failed to unlink project documents, %w", err)
		}

		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("failed to delete project, %w", err)
		}

		return nil
	})
}

// Completion returns the percentage of finished tasks, 0 when there are none
func Completion(finished, total int64) float64 {
	if total == 0 {
		return 0
	}

	return 100 * float64(finished) / float64(total)
}
