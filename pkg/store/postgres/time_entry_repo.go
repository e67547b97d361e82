package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// TimeEntryFilter narrows time entry queries. Nil fields are ignored;
// UserName matches as a case-insensitive substring; the date range is
// inclusive on both ends.
type TimeEntryFilter struct {
	ProjectID  *uint
	UserName   string
	StartDate  *time.Time
	EndDate    *time.Time
	IsBillable *bool
	IsInvoiced *bool
}

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) List(ctx context.Context, filter TimeEntryFilter) ([]model.TimeEntry, error) {
	query := r.db.WithContext(ctx).Preload("Project")

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserName != "" {
		query = query.Where("user_name ILIKE ?", "%"+filter.UserName+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.IsBillable != nil {
		query = query.Where("is_billable = ?", *filter.IsBillable)
	}
	if filter.IsInvoiced != nil {
		query = query.Where("is_invoiced = ?", *filter.IsInvoiced)
	}

	var entries []model.TimeEntry
	err := query.Order("date DESC").Find(&entries).Error
	return entries, err
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).Preload("Project").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.TimeEntry{}).Where("id = ?", id).Updates(updates).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.TimeEntry{}, id)
	return result.RowsAffected, result.Error
}

// Unbilled returns the billable, not-yet-invoiced entries for invoice
// extraction, newest first.
func (r *TimeEntryRepository) Unbilled(ctx context.Context, projectID *uint, userName string) ([]model.TimeEntry, error) {
	billable := true
	invoiced := false
	return r.List(ctx, TimeEntryFilter{
		ProjectID:  projectID,
		UserName:   userName,
		IsBillable: &billable,
		IsInvoiced: &invoiced,
	})
}

// MarkInvoiced flips is_invoiced for exactly the given ids in one statement.
// Ids that do not exist are silently skipped; the returned count is the
// number of rows actually updated.
func (r *TimeEntryRepository) MarkInvoiced(ctx context.Context, ids []uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Where("id IN ?", ids).
		Update("is_invoiced", true)
	return result.RowsAffected, result.Error
}
