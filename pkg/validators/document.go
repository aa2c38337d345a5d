package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 100

// DocumentLimits restricts what can be uploaded as a document.
// An empty AllowedTypes accepts anything.
type DocumentLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

// CheckedFile is an opened upload that passed validation
type CheckedFile struct {
	multipart.File
	Name        string
	Size        int64
	ContentType string
	Extension   string
}

// DocumentValidator sniffs the real content type of an uploaded file and
// checks it against the limits. On success the file is rewound and left
// open for the caller to close. The returned int is the HTTP status to
// answer with on failure.
func DocumentValidator(fh *multipart.FileHeader, l DocumentLimits) (int, *CheckedFile, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if l.MaxSize > 0 && fh.Size > l.MaxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if len(l.AllowedTypes) > 0 && !mimetype.EqualsAny(mime.String(), l.AllowedTypes...) {
		f.Close()
		return http.StatusUnsupportedMediaType, nil, ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return 0, &CheckedFile{
		File:        f,
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: mime.String(),
		Extension:   mime.Extension(),
	}, nil
}
