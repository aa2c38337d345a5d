// Package document contains the document upload, download and delete
// endpoints
package document

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/validators"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Target is a model documents can be uploaded to. Load returns the owner
// model for an id and Field names its many-to-many documents attribute.
type Target struct {
	Name     string
	Load     func(ctx context.Context, id uint) (any, error)
	Field    string
	Redirect func(id uint) string
}

// ProjectTarget uploads to Project.Documents
func ProjectTarget(d *internal.Deps) Target {
	return Target{
		Name: "project",
		Load: func(ctx context.Context, id uint) (any, error) {
			return d.Projects.Get(ctx, id)
		},
		Field:    "Documents",
		Redirect: func(id uint) string { return fmt.Sprintf("/projects/%d/", id) },
	}
}

// TaskTarget uploads to Task.Documents
func TaskTarget(d *internal.Deps) Target {
	return Target{
		Name: "task",
		Load: func(ctx context.Context, id uint) (any, error) {
			return d.Tasks.Get(ctx, id)
		},
		Field:    "Documents",
		Redirect: func(id uint) string { return fmt.Sprintf("/projects/tasks/%d/", id) },
	}
}

// UploadForm answers the upload form description
func UploadForm(c *gin.Context, d *internal.Deps, t Target) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	if _, ok := loadOwner(c, t, id); !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fields":        []string{"document", "description"},
		"max_size":      d.Config.Upload.MaxSize,
		"allowed_types": d.Config.Upload.AllowedTypes,
		"target":        t.Name,
	})
}

// Upload stores the posted file as a Document and links it to the target.
// The stored title is the uploaded file name.
func Upload(c *gin.Context, d *internal.Deps, t Target) {
	requestID := c.MustGet("requestID").(string)

	id, ok := respond.ID(c)
	if !ok {
		return
	}

	owner, ok := loadOwner(c, t, id)
	if !ok {
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		respond.Invalid(c, map[string]string{"document": validators.ErrNoFile.Error()})
		return
	}

	description := c.PostForm("description")
	if len(description) > 500 {
		respond.Invalid(c, map[string]string{"description": "max=500"})
		return
	}

	code, f, err := validators.DocumentValidator(fh, validators.DocumentLimits{
		MaxSize:      d.Config.Upload.MaxSize,
		AllowedTypes: d.Config.Upload.AllowedTypes,
	})
	if err != nil {
		if code == http.StatusInternalServerError {
			respond.Internal(c, "Failed to read uploaded file", err)
			return
		}

		respond.Error(c, code, err.Error())
		return
	}
	defer f.Close()

	doc, err := d.Documents.Create(c.Request.Context(), repository.Upload{
		Name:        f.Name,
		Description: description,
		ContentType: f.ContentType,
		Extension:   f.Extension,
		Size:        f.Size,
		Body:        f,
	})
	if err != nil {
		respond.Internal(c, "Failed to store document", err)
		return
	}

	if err := d.Documents.Attach(c.Request.Context(), owner, t.Field, doc); err != nil {
		if errors.Is(err, repository.ErrMissingAttachmentField) || errors.Is(err, repository.ErrMissingOwnerModel) {
			zap.L().Error("Document upload target is misconfigured",
				zap.String("target", t.Name),
				zap.String("field", t.Field),
				zap.Error(err),
				zap.String("requestID", requestID))

			respond.Error(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		respond.Internal(c, "Failed to attach document", err)
		return
	}

	c.Redirect(http.StatusFound, t.Redirect(id))
}

func loadOwner(c *gin.Context, t Target, id uint) (any, bool) {
	if t.Load == nil {
		respond.Internal(c, "Document upload target has no model", repository.ErrMissingOwnerModel)
		return nil, false
	}

	owner, err := t.Load(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return nil, false
		}

		respond.Internal(c, "Failed to load upload target", err)
		return nil, false
	}

	return owner, true
}
