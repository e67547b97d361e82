package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) List(ctx context.Context, phase *model.ProjectPhase, clientID *uint) ([]model.Project, error) {
	query := r.db.WithContext(ctx).Preload("Client")

	if phase != nil {
		query = query.Where("phase = ?", *phase)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	var projects []model.Project
	err := query.Order("id").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Preload("Client").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(updates).Error
}

// SetSiteInfo persists the provisioned collaboration site onto the project.
func (r *ProjectRepository) SetSiteInfo(ctx context.Context, id uint, siteURL, email, groupID string) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"sharepoint_site_url": siteURL,
		"sharepoint_email":    email,
		"sharepoint_group_id": groupID,
	})
}
