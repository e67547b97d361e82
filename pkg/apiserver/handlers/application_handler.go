package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/funding"
	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
	redisclient "github.com/housingpipeline/housingpipeline/pkg/store/redis"
)

const applicationStatsCacheKey = "dashboard:applications"

// recentWindow bounds the "recent applications" dashboard counter.
const recentWindow = 30 * 24 * time.Hour

type ApplicationHandler struct {
	db     *postgres.Store
	cache  *redisclient.Cache
	logger *zap.Logger
}

func NewApplicationHandler(db *postgres.Store, cache *redisclient.Cache, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{db: db, cache: cache, logger: logger}
}

type applicationCreateRequest struct {
	ProjectID        uint     `json:"project_id"`
	FundingSourceID  uint     `json:"funding_source_id"`
	Status           string   `json:"status"`
	ApplicationRound string   `json:"application_round"`
	RequestedAmount  *float64 `json:"requested_amount"`
	AwardedAmount    *float64 `json:"awarded_amount"`
	SubmissionDate   *string  `json:"submission_date"`
	DecisionDate     *string  `json:"decision_date"`
	Notes            string   `json:"notes"`
	DocumentsFolder  string   `json:"documents_folder"`
}

type applicationUpdateRequest struct {
	Status           *string      `json:"status"`
	ApplicationRound *string      `json:"application_round"`
	RequestedAmount  *float64     `json:"requested_amount"`
	AwardedAmount    *float64     `json:"awarded_amount"`
	SubmissionDate   optionalDate `json:"submission_date"`
	DecisionDate     optionalDate `json:"decision_date"`
	Notes            *string      `json:"notes"`
	DocumentsFolder  *string      `json:"documents_folder"`
}

func (h *ApplicationHandler) List(c *gin.Context) {
	projectID, err := parseUintQuery(c.Query("project_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	fundingSourceID, err := parseUintQuery(c.Query("funding_source_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	var status *model.ApplicationStatus
	if value := c.Query("status"); value != "" {
		parsed := model.ApplicationStatus(value)
		if !parsed.Valid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		status = &parsed
	}

	ctx := c.Request.Context()
	repo := postgres.NewApplicationRepository(h.db.DB())

	apps, err := repo.List(ctx, projectID, status, fundingSourceID)
	if err != nil {
		h.logger.Error("failed to list applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]gin.H, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		var project gin.H
		if app.Project != nil {
			project = gin.H{
				"id":    app.Project.ID,
				"name":  app.Project.Name,
				"city":  app.Project.City,
				"state": app.Project.State,
			}
		}
		var source gin.H
		if app.FundingSource != nil {
			source = gin.H{
				"id":     app.FundingSource.ID,
				"name":   app.FundingSource.Name,
				"type":   app.FundingSource.Type,
				"agency": app.FundingSource.Agency,
			}
		}
		result = append(result, gin.H{
			"id":                app.ID,
			"project":           project,
			"funding_source":    source,
			"status":            app.Status,
			"application_round": app.ApplicationRound,
			"requested_amount":  app.RequestedAmount,
			"awarded_amount":    app.AwardedAmount,
			"submission_date":   formatDate(app.SubmissionDate),
			"decision_date":     formatDate(app.DecisionDate),
			"notes":             app.Notes,
			"documents_folder":  app.DocumentsFolder,
			"created_at":        formatTimestamp(app.CreatedAt),
			"updated_at":        formatTimestamp(app.UpdatedAt),
		})
	}

	respondList(c, result, len(result))
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewApplicationRepository(h.db.DB())

	app, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.Error("failed to get application", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var project gin.H
	if app.Project != nil {
		project = gin.H{
			"id":          app.Project.ID,
			"name":        app.Project.Name,
			"address":     app.Project.Address,
			"city":        app.Project.City,
			"state":       app.Project.State,
			"total_units": app.Project.TotalUnits,
			"total_cost":  app.Project.TotalCost,
		}
	}
	var source gin.H
	if app.FundingSource != nil {
		source = gin.H{
			"id":           app.FundingSource.ID,
			"name":         app.FundingSource.Name,
			"type":         app.FundingSource.Type,
			"agency":       app.FundingSource.Agency,
			"description":  app.FundingSource.Description,
			"requirements": app.FundingSource.Requirements,
			"website_url":  app.FundingSource.WebsiteURL,
		}
	}

	respondOK(c, gin.H{
		"id":                app.ID,
		"project":           project,
		"funding_source":    source,
		"status":            app.Status,
		"application_round": app.ApplicationRound,
		"requested_amount":  app.RequestedAmount,
		"awarded_amount":    app.AwardedAmount,
		"submission_date":   formatDate(app.SubmissionDate),
		"decision_date":     formatDate(app.DecisionDate),
		"notes":             app.Notes,
		"documents_folder":  app.DocumentsFolder,
		"created_at":        formatTimestamp(app.CreatedAt),
		"updated_at":        formatTimestamp(app.UpdatedAt),
	})
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var req applicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.ProjectID == 0 {
		respondError(c, http.StatusBadRequest, "Project ID is required")
		return
	}
	if req.FundingSourceID == 0 {
		respondError(c, http.StatusBadRequest, "Funding source ID is required")
		return
	}

	status := model.StatusDraft
	if req.Status != "" {
		status = model.ApplicationStatus(req.Status)
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
	}

	var submissionDate, decisionDate *time.Time
	if req.SubmissionDate != nil && *req.SubmissionDate != "" {
		parsed, err := parseDateQuery(*req.SubmissionDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		submissionDate = parsed
	}
	if req.DecisionDate != nil && *req.DecisionDate != "" {
		parsed, err := parseDateQuery(*req.DecisionDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		decisionDate = parsed
	}

	ctx := c.Request.Context()

	projectRepo := postgres.NewProjectRepository(h.db.DB())
	if _, err := projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to verify project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	sourceRepo := postgres.NewFundingSourceRepository(h.db.DB())
	if _, err := sourceRepo.GetByID(ctx, req.FundingSourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Funding source not found")
			return
		}
		h.logger.Error("failed to verify funding source", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	app := &model.Application{
		ProjectID:        req.ProjectID,
		FundingSourceID:  req.FundingSourceID,
		Status:           status,
		ApplicationRound: req.ApplicationRound,
		RequestedAmount:  req.RequestedAmount,
		AwardedAmount:    req.AwardedAmount,
		SubmissionDate:   submissionDate,
		DecisionDate:     decisionDate,
		Notes:            req.Notes,
		DocumentsFolder:  req.DocumentsFolder,
	}

	repo := postgres.NewApplicationRepository(h.db.DB())
	if err := repo.Create(ctx, app); err != nil {
		h.logger.Error("failed to create application", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondCreated(c, gin.H{
		"id":      app.ID,
		"message": "Application created successfully",
	})
}

func (h *ApplicationHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req applicationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewApplicationRepository(h.db.DB())

	app, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.Error("failed to get application", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		status := model.ApplicationStatus(*req.Status)
		if !status.Valid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		updates["status"] = status
	}
	if req.ApplicationRound != nil {
		updates["application_round"] = *req.ApplicationRound
	}
	if req.RequestedAmount != nil {
		updates["requested_amount"] = *req.RequestedAmount
	}
	if req.AwardedAmount != nil {
		updates["awarded_amount"] = *req.AwardedAmount
	}
	if req.SubmissionDate.set {
		updates["submission_date"] = req.SubmissionDate.value
	}
	if req.DecisionDate.set {
		updates["decision_date"] = req.DecisionDate.value
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.DocumentsFolder != nil {
		updates["documents_folder"] = *req.DocumentsFolder
	}

	if len(updates) > 0 {
		if err := repo.UpdateFields(ctx, app.ID, updates); err != nil {
			h.logger.Error("failed to update application", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	respondOK(c, gin.H{
		"id":      app.ID,
		"message": "Application updated successfully",
	})
}

func (h *ApplicationHandler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	var cached gin.H
	if hit, err := h.cache.GetJSON(ctx, applicationStatsCacheKey, &cached); err != nil {
		h.logger.Warn("application stats cache read failed", zap.Error(err))
	} else if hit {
		respondOK(c, cached)
		return
	}

	repo := postgres.NewApplicationRepository(h.db.DB())
	apps, err := repo.All(ctx)
	if err != nil {
		h.logger.Error("failed to load applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	summary := funding.SummarizeApplications(apps, time.Now().UTC().Add(-recentWindow))

	stats := gin.H{
		"status_distribution": summary.StatusDistribution,
		"recent_applications": summary.RecentApplications,
		"total_requested":     summary.TotalRequested,
		"total_awarded":       summary.TotalAwarded,
		"success_rate":        summary.SuccessRate,
		"total_applications":  summary.TotalApplications,
	}

	if err := h.cache.SetJSON(ctx, applicationStatsCacheKey, stats); err != nil {
		h.logger.Warn("application stats cache write failed", zap.Error(err))
	}

	respondOK(c, stats)
}
