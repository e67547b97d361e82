package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) List(ctx context.Context, projectID *uint, status *model.ApplicationStatus, fundingSourceID *uint) ([]model.Application, error) {
	query := r.db.WithContext(ctx).Preload("Project").Preload("FundingSource")

	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if fundingSourceID != nil {
		query = query.Where("funding_source_id = ?", *fundingSourceID)
	}

	var apps []model.Application
	err := query.Order("id").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("FundingSource").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Application{}).Where("id = ?", id).Updates(updates).Error
}

// ForProject returns a project's applications with their funding sources
// resolved, the input for funding-gap computation and recommendations.
func (r *ApplicationRepository) ForProject(ctx context.Context, projectID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("FundingSource").
		Where("project_id = ?", projectID).
		Order("id").
		Find(&apps).Error
	return apps, err
}

// ForSource returns a funding source's applications with their projects
// resolved.
func (r *ApplicationRepository) ForSource(ctx context.Context, fundingSourceID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("funding_source_id = ?", fundingSourceID).
		Order("id").
		Find(&apps).Error
	return apps, err
}

// All returns every application; dashboard rollups group them in memory.
func (r *ApplicationRepository) All(ctx context.Context) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).Order("id").Find(&apps).Error
	return apps, err
}

// GroupedByProject returns every application bucketed by project id.
func (r *ApplicationRepository) GroupedByProject(ctx context.Context) (map[uint][]model.Application, error) {
	apps, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint][]model.Application)
	for _, app := range apps {
		grouped[app.ProjectID] = append(grouped[app.ProjectID], app)
	}
	return grouped, nil
}

// CountsBySource returns the number of applications per funding source id.
func (r *ApplicationRepository) CountsBySource(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		FundingSourceID uint
		Count           int64
	}
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select("funding_source_id, count(*) as count").
		Group("funding_source_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.FundingSourceID] = row.Count
	}
	return counts, nil
}
