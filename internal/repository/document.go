package repository

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const deleteWorkers = 4

// Upload is a validated file about to become a Document
type Upload struct {
	Name        string
	Description string
	ContentType string
	Extension   string
	Size        int64
	Body        io.Reader
}

type Documents struct {
	db      *gorm.DB
	storage storage.Storage
}

func NewDocuments(db *gorm.DB, s storage.Storage) *Documents {
	return &Documents{db: db, storage: s}
}

// Create stores the file and its record. The record is titled after the
// uploaded file name. When the record can't be written the stored file is
// removed again.
func (d *Documents) Create(ctx context.Context, u Upload) (*model.Document, error) {
	doc := &model.Document{
		FileKey:     storage.DocumentKey(u.Extension),
		Title:       u.Name,
		Description: u.Description,
		ContentType: u.ContentType,
		Size:        u.Size,
	}

	if err := d.storage.Put(ctx, doc.FileKey, u.Body, u.Size, u.ContentType); err != nil {
		return nil, err
	}

	if err := d.db.WithContext(ctx).Create(doc).Error; err != nil {
		if derr := d.storage.Delete(context.WithoutCancel(ctx), doc.FileKey); derr != nil {
			zap.L().Error("Failed to clean up stored file after failed insert", zap.String("key", doc.FileKey), zap.Error(derr))
		}

		return nil, fmt.Errorf("failed to create document, %w", err)
	}

	return doc, nil
}

// Attach links doc to the many-to-many attribute field of owner. owner must
// be a loaded model. A missing model or attribute is a configuration error.
// Link conflicts are treated as already linked.
func (d *Documents) Attach(ctx context.Context, owner any, field string, doc *model.Document) error {
	if owner == nil {
		return ErrMissingOwnerModel
	}

	assoc := d.db.WithContext(ctx).Model(owner).Association(field)
	if assoc.Error != nil {
		if errors.Is(assoc.Error, gorm.ErrUnsupportedRelation) {
			return fmt.Errorf("%w: %s", ErrMissingAttachmentField, field)
		}

		return assoc.Error
	}

	if assoc.Relationship == nil || assoc.Relationship.Type != schema.Many2Many {
		return fmt.Errorf("%w: %s", ErrMissingAttachmentField, field)
	}

	if err := assoc.Append(doc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
			zap.L().Debug("Ignoring document link conflict", zap.Uint("documentID", doc.ID), zap.Error(err))
			return nil
		}

		return fmt.Errorf("failed to attach document, %w", err)
	}

	return nil
}

func (d *Documents) Get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	if err := d.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &doc, nil
}

// Open returns a reader for the stored file of doc
func (d *Documents) Open(ctx context.Context, doc *model.Document) (io.ReadCloser, error) {
	return d.storage.Open(ctx, doc.FileKey)
}

// Delete removes the given documents. Each stored file is deleted once
// before its record and links are removed. Documents whose file couldn't
// be deleted are kept and reported in the returned error. The number of
// removed documents is returned.
func (d *Documents) Delete(ctx context.Context, ids ...uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var docs []model.Document
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return 0, fmt.Errorf("failed to load documents, %w", err)
	}

	var (
		mu      sync.Mutex
		removed = make([]uint, 0, len(docs))
	)

	p := pool.New().WithErrors().WithMaxGoroutines(deleteWorkers)
	for _, doc := range docs {
		doc := doc
		p.Go(func() error {
			if err := d.storage.Delete(ctx, doc.FileKey); err != nil {
				return fmt.Errorf("document %d: %w", doc.ID, err)
			}

			mu.Lock()
			removed = append(removed, doc.ID)
			mu.Unlock()

			return nil
		})
	}
	fileErr := p.Wait()

	if len(removed) == 0 {
		return 0, fileErr
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"project_documents", "task_documents"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE document_id IN ?", removed).Error; err != nil {
				return fmt.Errorf("failed to unlink documents, %w", err)
			}
		}

		return tx.Where("id IN ?", removed).Delete(&model.Document{}).Error
	})
	if err != nil {
		return 0, errors.Join(fileErr, fmt.Errorf("failed to delete document records, %w", err))
	}

	return len(removed), fileErr
}
