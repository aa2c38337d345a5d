package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// Local keeps files on a filesystem rooted at a base directory
type Local struct {
	fs afero.Fs
}

// NewLocal stores files below dir on the OS filesystem
func NewLocal(dir string) (*Local, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &Local{fs: afero.NewBasePathFs(osFs, dir)}, nil
}

// NewLocalFs wraps any afero filesystem, mostly an in-memory one
func NewLocalFs(fsys afero.Fs) *Local {
	return &Local{fs: fsys}
}

func (l *Local) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if err := afero.WriteReader(l.fs, key, body); err != nil {
		return fmt.Errorf("failed to write %s, %w", key, err)
	}

	return nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := l.fs.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	return f, err
}

// Delete removes key. Removing a missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	err := l.fs.Remove(key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s, %w", key, err)
	}

	return nil
}
