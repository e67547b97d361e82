package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// ForProject returns a project's tracked documents, newest upload first.
func (r *DocumentRepository) ForProject(ctx context.Context, projectID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("upload_date DESC").
		Find(&docs).Error
	return docs, err
}
