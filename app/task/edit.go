package task

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TaskForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": formFields, "statuses": []model.TaskStatus{
		model.StatusNew, model.StatusInProgress, model.StatusDone, model.StatusClosed,
	}})
}

func TaskCreate(c *gin.Context, d *internal.Deps) {
	var form taskForm
	if !respond.Bind(c, &form) {
		return
	}

	var t model.Task

	errs, err := form.apply(c.Request.Context(), d, &t)
	if err != nil {
		respond.Internal(c, "Failed to validate task form", err)
		return
	}
	if errs != nil {
		respond.Invalid(c, errs)
		return
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&t).Error; err != nil {
		respond.Internal(c, "Failed to create task", err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/projects/tasks/%d/", t.ID))
}

func TaskEditForm(c *gin.Context, d *internal.Deps) {
	t, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": formFields, "task": t})
}

func TaskEdit(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	var t model.Task
	if err := d.DB.WithContext(c.Request.Context()).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to load task", err)
		return
	}

	var form taskForm
	if !respond.Bind(c, &form) {
		return
	}

	errs, err := form.apply(c.Request.Context(), d, &t)
	if err != nil {
		respond.Internal(c, "Failed to validate task form", err)
		return
	}
	if errs != nil {
		respond.Invalid(c, errs)
		return
	}

	err = d.DB.WithContext(c.Request.Context()).
		Model(&t).
		Select("project_id", "title", "description", "author_id", "assignee_id", "start_at", "end_at", "status").
		Updates(&t).
		Error
	if err != nil {
		respond.Internal(c, "Failed to update task", err)
		return
	}

	respond.Redirect(c, fmt.Sprintf("/projects/tasks/%d/", t.ID))
}

func TaskDeleteConfirm(c *gin.Context, d *internal.Deps) {
	t, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": t})
}

// TaskDelete removes the task with its comments
func TaskDelete(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	if err := d.Tasks.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to delete task", err)
		return
	}

	c.Redirect(http.StatusFound, "/projects/tasks/")
}
