// Package repository holds the database access that goes beyond a single
// query: listings with search and ordering, and delete paths that cascade
// to related rows and stored files.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrMissingOwnerModel means a document upload target was configured
	// without the model documents get attached to
	ErrMissingOwnerModel = errors.New("document attachment has no owner model configured")

	// ErrMissingAttachmentField means the owner model has no many-to-many
	// attribute with the configured name
	ErrMissingAttachmentField = errors.New("owner model has no such many-to-many attribute")
)

// ListOptions narrows and orders a listing. Order must already be a
// validated ORDER BY clause.
type ListOptions struct {
	Query string
	Order string
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
