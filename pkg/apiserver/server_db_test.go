package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
)

func newTestServerWithDB(t *testing.T) (*Server, *postgres.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store := postgres.NewStoreWithDB(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return NewServer(store, nil, &config.Config{}, zap.NewNop()), store
}

func TestCreateSiteRejectedForProvisionedProject(t *testing.T) {
	server, store := newTestServerWithDB(t)

	client := model.Client{Name: "Polk County CDC"}
	if err := store.DB().Create(&client).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	project := model.Project{
		Name:              "Dallas Mill Station",
		Phase:             model.PhaseApplicationFinancing,
		ClientID:          client.ID,
		SharePointSiteURL: "https://polkcdc.sharepoint.com/sites/DallasMillStation",
	}
	if err := store.DB().Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	body := strings.NewReader(`{"owner_user_id":"owner-1"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/sharepoint/projects/%d/create-site", project.ID), body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response struct {
		Success     bool   `json:"success"`
		Error       string `json:"error"`
		ExistingURL string `json:"existing_url"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Success {
		t.Fatal("expected failure envelope")
	}
	if response.Error != "SharePoint site already exists for this project" {
		t.Fatalf("unexpected error: %q", response.Error)
	}
	if response.ExistingURL != project.SharePointSiteURL {
		t.Fatalf("expected existing url %q, got %q", project.SharePointSiteURL, response.ExistingURL)
	}
}

func TestMarkInvoicedEndpointCountsOnlyExistingEntries(t *testing.T) {
	server, store := newTestServerWithDB(t)

	for _, desc := range []string{"LIHTC application review", "AHP submission prep"} {
		entry := model.TimeEntry{
			UserName:    "Diana Marenco",
			Description: desc,
			Hours:       4,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
			IsBillable:  true,
		}
		if err := store.DB().Create(&entry).Error; err != nil {
			t.Fatalf("failed to create time entry: %v", err)
		}
	}

	body := strings.NewReader(`{"entry_ids":[1,2,999]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/time-tracking/mark-invoiced", body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			UpdatedCount int64  `json:"updated_count"`
			Message      string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Success {
		t.Fatal("expected success")
	}
	if response.Data.UpdatedCount != 2 {
		t.Fatalf("expected 2 updated entries, got %d", response.Data.UpdatedCount)
	}
	if response.Data.Message != "2 time entries marked as invoiced" {
		t.Fatalf("unexpected message: %q", response.Data.Message)
	}
}
