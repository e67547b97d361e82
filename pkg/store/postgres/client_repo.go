package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Order("id").Find(&clients).Error
	return clients, err
}

func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Updates(updates).Error
}

// ProjectCounts returns the number of projects per client id.
func (r *ClientRepository) ProjectCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		ClientID uint
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Select("client_id, count(*) as count").
		Group("client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ClientID] = row.Count
	}
	return counts, nil
}

func (r *ClientRepository) ProjectsForClient(ctx context.Context, clientID uint) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id").Find(&projects).Error
	return projects, err
}
