package project

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProjectForm answers the empty create form
func ProjectForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": formFields})
}

func ProjectCreate(c *gin.Context, d *internal.Deps) {
	var form projectForm
	if !respond.Bind(c, &form) {
		return
	}

	var p model.Project
	if errs := form.apply(&p); errs != nil {
		respond.Invalid(c, errs)
		return
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		respond.Internal(c, "Failed to create project", err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/projects/%d/", p.ID))
}

// ProjectEditForm answers the current values of a project
func ProjectEditForm(c *gin.Context, d *internal.Deps) {
	p, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": formFields, "project": p})
}

// ProjectEdit saves the form and redirects to ?next= or the project
func ProjectEdit(c *gin.Context, d *internal.Deps) {
	p, ok := load(c, d)
	if !ok {
		return
	}

	var form projectForm
	if !respond.Bind(c, &form) {
		return
	}

	if errs := form.apply(p); errs != nil {
		respond.Invalid(c, errs)
		return
	}

	err := d.DB.WithContext(c.Request.Context()).
		Model(p).
		Select("title", "description", "due_date", "is_closed").
		Updates(p).
		Error
	if err != nil {
		respond.Internal(c, "Failed to update project", err)
		return
	}

	respond.Redirect(c, fmt.Sprintf("/projects/%d/", p.ID))
}

// ProjectDeleteConfirm answers what would be deleted
func ProjectDeleteConfirm(c *gin.Context, d *internal.Deps) {
	p, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

// ProjectDelete removes the project with its tasks and their comments
func ProjectDelete(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	if err := d.Projects.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to delete project", err)
		return
	}

	c.Redirect(http.StatusFound, "/projects/")
}

func load(c *gin.Context, d *internal.Deps) (*model.Project, bool) {
	id, ok := respond.ID(c)
	if !ok {
		return nil, false
	}

	p, err := d.Projects.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return nil, false
		}

		respond.Internal(c, "Failed to load project", err)
		return nil, false
	}

	return p, true
}
