package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	store := NewStoreWithDB(db)
	require.NoError(t, store.AutoMigrate(), "failed to migrate schema")
	return store
}

func TestMarkInvoicedSkipsUnknownIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	repo := NewTimeEntryRepository(store.DB())

	for _, desc := range []string{"LIHTC application review", "AHP submission prep"} {
		require.NoError(t, repo.Create(ctx, &model.TimeEntry{
			UserName:    "Diana Marenco",
			Description: desc,
			Hours:       4,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        day(2025, time.June, 20),
			IsBillable:  true,
		}))
	}

	updated, err := repo.MarkInvoiced(ctx, []uint{1, 2, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	entries, err := repo.List(ctx, TimeEntryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.True(t, entry.IsInvoiced)
	}
}

func TestDeleteReportsMissingEntry(t *testing.T) {
	store := setupTestStore(t)
	repo := NewTimeEntryRepository(store.DB())

	affected, err := repo.Delete(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestSeedPopulatesEmptyDatabase(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx))

	counts := map[string]struct {
		mdl  interface{}
		want int64
	}{
		"clients":         {&model.Client{}, 2},
		"projects":        {&model.Project{}, 2},
		"funding sources": {&model.FundingSource{}, 6},
		"applications":    {&model.Application{}, 4},
		"time entries":    {&model.TimeEntry{}, 4},
	}
	for name, tc := range counts {
		var got int64
		require.NoError(t, store.DB().Model(tc.mdl).Count(&got).Error)
		assert.Equal(t, tc.want, got, name)
	}

	projectRepo := NewProjectRepository(store.DB())
	project, err := projectRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dallas Mill Station", project.Name)
	assert.True(t, project.HasSite())

	appRepo := NewApplicationRepository(store.DB())
	apps, err := appRepo.ForProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 4)
}

func TestSeedIsNoOpOnPopulatedDatabase(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx))
	require.NoError(t, store.Seed(ctx))

	var projects int64
	require.NoError(t, store.DB().Model(&model.Project{}).Count(&projects).Error)
	assert.Equal(t, int64(2), projects)
}
