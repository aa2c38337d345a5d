// Package storage keeps the files behind Document records
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("stored file not found")

// Storage is a flat key -> blob store
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// DocumentKey builds a fresh key for an uploaded document. Keys are spread
// over two directory levels: documents/ab/cd/<id><ext>
func DocumentKey(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return path.Join("documents", id[:2], id[2:4], id+strings.ToLower(ext))
}
