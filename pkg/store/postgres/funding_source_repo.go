package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

type FundingSourceRepository struct {
	db *gorm.DB
}

func NewFundingSourceRepository(db *gorm.DB) *FundingSourceRepository {
	return &FundingSourceRepository{db: db}
}

func (r *FundingSourceRepository) List(ctx context.Context, sourceType *model.FundingSourceType, isActive *bool) ([]model.FundingSource, error) {
	query := r.db.WithContext(ctx)

	if sourceType != nil {
		query = query.Where("type = ?", *sourceType)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var sources []model.FundingSource
	err := query.Order("id").Find(&sources).Error
	return sources, err
}

func (r *FundingSourceRepository) GetByID(ctx context.Context, id uint) (*model.FundingSource, error) {
	var source model.FundingSource
	if err := r.db.WithContext(ctx).First(&source, id).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *FundingSourceRepository) Create(ctx context.Context, source *model.FundingSource) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *FundingSourceRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.FundingSource{}).Where("id = ?", id).Updates(updates).Error
}

// Active returns every active source ordered by id, the candidate set for the
// matching engine.
func (r *FundingSourceRepository) Active(ctx context.Context) ([]model.FundingSource, error) {
	active := true
	return r.List(ctx, nil, &active)
}
