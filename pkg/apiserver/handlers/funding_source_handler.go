package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
)

type FundingSourceHandler struct {
	db     *postgres.Store
	logger *zap.Logger
}

func NewFundingSourceHandler(db *postgres.Store, logger *zap.Logger) *FundingSourceHandler {
	return &FundingSourceHandler{db: db, logger: logger}
}

type fundingSourceCreateRequest struct {
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Agency              string   `json:"agency"`
	Description         string   `json:"description"`
	ApplicationDeadline *string  `json:"application_deadline"`
	AwardAmountMin      *float64 `json:"award_amount_min"`
	AwardAmountMax      *float64 `json:"award_amount_max"`
	Requirements        string   `json:"requirements"`
	ContactInfo         string   `json:"contact_info"`
	WebsiteURL          string   `json:"website_url"`
	IsActive            *bool    `json:"is_active"`
}

type fundingSourceUpdateRequest struct {
	Name                *string      `json:"name"`
	Type                *string      `json:"type"`
	Agency              *string      `json:"agency"`
	Description         *string      `json:"description"`
	ApplicationDeadline optionalDate `json:"application_deadline"`
	AwardAmountMin      *float64     `json:"award_amount_min"`
	AwardAmountMax      *float64     `json:"award_amount_max"`
	Requirements        *string      `json:"requirements"`
	ContactInfo         *string      `json:"contact_info"`
	WebsiteURL          *string      `json:"website_url"`
	IsActive            *bool        `json:"is_active"`
}

func (h *FundingSourceHandler) List(c *gin.Context) {
	var sourceType *model.FundingSourceType
	if value := c.Query("type"); value != "" {
		parsed := model.FundingSourceType(value)
		if !parsed.Valid() {
			respondError(c, http.StatusBadRequest, "invalid funding source type")
			return
		}
		sourceType = &parsed
	}
	isActive := parseBoolFlag(c.Query("is_active"))

	ctx := c.Request.Context()
	repo := postgres.NewFundingSourceRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	sources, err := repo.List(ctx, sourceType, isActive)
	if err != nil {
		h.logger.Error("failed to list funding sources", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	counts, err := appRepo.CountsBySource(ctx)
	if err != nil {
		h.logger.Error("failed to count applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]gin.H, 0, len(sources))
	for i := range sources {
		source := &sources[i]
		result = append(result, gin.H{
			"id":                   source.ID,
			"name":                 source.Name,
			"type":                 source.Type,
			"agency":               source.Agency,
			"description":          source.Description,
			"application_deadline": formatDate(source.ApplicationDeadline),
			"award_amount_min":     source.AwardAmountMin,
			"award_amount_max":     source.AwardAmountMax,
			"requirements":         source.Requirements,
			"contact_info":         source.ContactInfo,
			"website_url":          source.WebsiteURL,
			"is_active":            source.IsActive,
			"applications_count":   counts[source.ID],
			"created_at":           formatTimestamp(source.CreatedAt),
		})
	}

	respondList(c, result, len(result))
}

func (h *FundingSourceHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewFundingSourceRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	source, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Funding source not found")
			return
		}
		h.logger.Error("failed to get funding source", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	apps, err := appRepo.ForSource(ctx, source.ID)
	if err != nil {
		h.logger.Error("failed to load source applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	applications := make([]gin.H, 0, len(apps))
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
		applications = append(applications, gin.H{
			"id":                app.ID,
			"project":           project,
			"status":            app.Status,
			"application_round": app.ApplicationRound,
			"requested_amount":  app.RequestedAmount,
			"awarded_amount":    app.AwardedAmount,
			"submission_date":   formatDate(app.SubmissionDate),
		})
	}

	respondOK(c, gin.H{
		"id":                   source.ID,
		"name":                 source.Name,
		"type":                 source.Type,
		"agency":               source.Agency,
		"description":          source.Description,
		"application_deadline": formatDate(source.ApplicationDeadline),
		"award_amount_min":     source.AwardAmountMin,
		"award_amount_max":     source.AwardAmountMax,
		"requirements":         source.Requirements,
		"contact_info":         source.ContactInfo,
		"website_url":          source.WebsiteURL,
		"is_active":            source.IsActive,
		"applications":         applications,
		"created_at":           formatTimestamp(source.CreatedAt),
	})
}

func (h *FundingSourceHandler) Create(c *gin.Context) {
	var req fundingSourceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "Funding source name is required")
		return
	}
	if req.Type == "" {
		respondError(c, http.StatusBadRequest, "Funding source type is required")
		return
	}
	sourceType := model.FundingSourceType(req.Type)
	if !sourceType.Valid() {
		respondError(c, http.StatusBadRequest, "invalid funding source type")
		return
	}

	var deadline *time.Time
	if req.ApplicationDeadline != nil && *req.ApplicationDeadline != "" {
		parsed, err := parseDateQuery(*req.ApplicationDeadline)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		deadline = parsed
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	source := &model.FundingSource{
		Name:                req.Name,
		Type:                sourceType,
		Agency:              req.Agency,
		Description:         req.Description,
		ApplicationDeadline: deadline,
		AwardAmountMin:      req.AwardAmountMin,
		AwardAmountMax:      req.AwardAmountMax,
		Requirements:        req.Requirements,
		ContactInfo:         req.ContactInfo,
		WebsiteURL:          req.WebsiteURL,
		IsActive:            isActive,
	}

	repo := postgres.NewFundingSourceRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), source); err != nil {
		h.logger.Error("failed to create funding source", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondCreated(c, gin.H{
		"id":      source.ID,
		"name":    source.Name,
		"message": "Funding source created successfully",
	})
}

func (h *FundingSourceHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req fundingSourceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewFundingSourceRepository(h.db.DB())

	source, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Funding source not found")
			return
		}
		h.logger.Error("failed to get funding source", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		sourceType := model.FundingSourceType(*req.Type)
		if !sourceType.Valid() {
			respondError(c, http.StatusBadRequest, "invalid funding source type")
			return
		}
		updates["type"] = sourceType
	}
	if req.Agency != nil {
		updates["agency"] = *req.Agency
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ApplicationDeadline.set {
		updates["application_deadline"] = req.ApplicationDeadline.value
	}
	if req.AwardAmountMin != nil {
		updates["award_amount_min"] = *req.AwardAmountMin
	}
	if req.AwardAmountMax != nil {
		updates["award_amount_max"] = *req.AwardAmountMax
	}
	if req.Requirements != nil {
		updates["requirements"] = *req.Requirements
	}
	if req.ContactInfo != nil {
		updates["contact_info"] = *req.ContactInfo
	}
	if req.WebsiteURL != nil {
		updates["website_url"] = *req.WebsiteURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := repo.UpdateFields(ctx, source.ID, updates); err != nil {
			h.logger.Error("failed to update funding source", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	name := source.Name
	if req.Name != nil {
		name = *req.Name
	}
	respondOK(c, gin.H{
		"id":      source.ID,
		"name":    name,
		"message": "Funding source updated successfully",
	})
}

// Types lists the recognized funding source types as value/label pairs for
// form dropdowns.
func (h *FundingSourceHandler) Types(c *gin.Context) {
	types := make([]gin.H, 0, len(model.FundingSourceTypes()))
	for _, t := range model.FundingSourceTypes() {
		types = append(types, gin.H{"value": t, "label": t})
	}
	respondOK(c, types)
}
