package document

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/internal/storage"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DocumentDownload streams the stored file of a document
func DocumentDownload(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	doc, err := d.Documents.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to load document", err)
		return
	}

	body, err := d.Documents.Open(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, "Failed to open stored document", err)
		return
	}
	defer body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, doc.Size, contentType, body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": doc.Title}),
	})
}

// DocumentDelete removes a document with its stored file and links
func DocumentDelete(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	n, err := d.Documents.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Internal(c, "Failed to delete document", err)
		return
	}

	if n == 0 {
		respond.NotFound(c)
		return
	}

	respond.Redirect(c, "/projects/")
}
