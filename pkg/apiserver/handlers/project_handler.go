package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/funding"
	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
	redisclient "github.com/housingpipeline/housingpipeline/pkg/store/redis"
)

const projectStatsCacheKey = "dashboard:projects"

type ProjectHandler struct {
	db     *postgres.Store
	cache  *redisclient.Cache
	logger *zap.Logger
}

func NewProjectHandler(db *postgres.Store, cache *redisclient.Cache, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{db: db, cache: cache, logger: logger}
}

type projectCreateRequest struct {
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	ZipCode           string   `json:"zip_code"`
	Phase             string   `json:"phase"`
	ProjectType       string   `json:"project_type"`
	PopulationType    string   `json:"population_type"`
	HousingType       string   `json:"housing_type"`
	TotalUnits        *int     `json:"total_units"`
	TotalCost         *float64 `json:"total_cost"`
	ClientID          uint     `json:"client_id"`
	SharePointSiteURL string   `json:"sharepoint_site_url"`
	SharePointEmail   string   `json:"sharepoint_email"`
}

type projectUpdateRequest struct {
	Name              *string  `json:"name"`
	Address           *string  `json:"address"`
	City              *string  `json:"city"`
	State             *string  `json:"state"`
	ZipCode           *string  `json:"zip_code"`
	Phase             *string  `json:"phase"`
	ProjectType       *string  `json:"project_type"`
	PopulationType    *string  `json:"population_type"`
	HousingType       *string  `json:"housing_type"`
	TotalUnits        *int     `json:"total_units"`
	TotalCost         *float64 `json:"total_cost"`
	SharePointSiteURL *string  `json:"sharepoint_site_url"`
	SharePointEmail   *string  `json:"sharepoint_email"`
}

func clientSummary(client *model.Client) gin.H {
	if client == nil {
		return nil
	}
	return gin.H{
		"id":           client.ID,
		"name":         client.Name,
		"organization": client.Organization,
	}
}

func (h *ProjectHandler) List(c *gin.Context) {
	var phase *model.ProjectPhase
	if value := c.Query("phase"); value != "" {
		parsed := model.ProjectPhase(value)
		if !parsed.Valid() {
			respondError(c, http.StatusBadRequest, "invalid phase")
			return
		}
		phase = &parsed
	}

	clientID, err := parseUintQuery(c.Query("client_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewProjectRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	projects, err := repo.List(ctx, phase, clientID)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	appsByProject, err := appRepo.GroupedByProject(ctx)
	if err != nil {
		h.logger.Error("failed to load applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]gin.H, 0, len(projects))
	for i := range projects {
		project := &projects[i]
		apps := appsByProject[project.ID]
		f := funding.Compute(project.TotalCost, apps)

		result = append(result, gin.H{
			"id":                  project.ID,
			"name":                project.Name,
			"address":             project.Address,
			"city":                project.City,
			"state":               project.State,
			"zip_code":            project.ZipCode,
			"phase":               project.Phase,
			"project_type":        project.ProjectType,
			"population_type":     project.PopulationType,
			"housing_type":        project.HousingType,
			"total_units":         project.TotalUnits,
			"total_cost":          project.TotalCost,
			"funding_secured":     f.TotalAwarded,
			"funding_gap":         f.Gap,
			"client":              clientSummary(project.Client),
			"sharepoint_site_url": project.SharePointSiteURL,
			"sharepoint_email":    project.SharePointEmail,
			"applications_count":  len(apps),
			"created_at":          formatTimestamp(project.CreatedAt),
			"updated_at":          formatTimestamp(project.UpdatedAt),
		})
	}

	respondList(c, result, len(result))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewProjectRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	project, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	apps, err := appRepo.ForProject(ctx, project.ID)
	if err != nil {
		h.logger.Error("failed to load project applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	f := funding.Compute(project.TotalCost, apps)

	applications := make([]gin.H, 0, len(apps))
	for i := range apps {
		app := &apps[i]
		var source gin.H
		if app.FundingSource != nil {
			source = gin.H{
				"id":     app.FundingSource.ID,
				"name":   app.FundingSource.Name,
				"type":   app.FundingSource.Type,
				"agency": app.FundingSource.Agency,
			}
		}
		applications = append(applications, gin.H{
			"id":                app.ID,
			"funding_source":    source,
			"status":            app.Status,
			"application_round": app.ApplicationRound,
			"requested_amount":  app.RequestedAmount,
			"awarded_amount":    app.AwardedAmount,
			"submission_date":   formatDate(app.SubmissionDate),
			"decision_date":     formatDate(app.DecisionDate),
			"notes":             app.Notes,
		})
	}

	var client gin.H
	if project.Client != nil {
		client = gin.H{
			"id":           project.Client.ID,
			"name":         project.Client.Name,
			"organization": project.Client.Organization,
			"email":        project.Client.Email,
			"phone":        project.Client.Phone,
		}
	}

	respondOK(c, gin.H{
		"id":                  project.ID,
		"name":                project.Name,
		"address":             project.Address,
		"city":                project.City,
		"state":               project.State,
		"zip_code":            project.ZipCode,
		"phase":               project.Phase,
		"project_type":        project.ProjectType,
		"population_type":     project.PopulationType,
		"housing_type":        project.HousingType,
		"total_units":         project.TotalUnits,
		"total_cost":          project.TotalCost,
		"funding_secured":     f.TotalAwarded,
		"funding_requested":   f.TotalRequested,
		"funding_gap":         f.Gap,
		"client":              client,
		"sharepoint_site_url": project.SharePointSiteURL,
		"sharepoint_email":    project.SharePointEmail,
		"applications":        applications,
		"created_at":          formatTimestamp(project.CreatedAt),
		"updated_at":          formatTimestamp(project.UpdatedAt),
	})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "Project name is required")
		return
	}
	if req.ClientID == 0 {
		respondError(c, http.StatusBadRequest, "Client ID is required")
		return
	}

	phase := model.PhasePreDevelopment
	if req.Phase != "" {
		phase = model.ProjectPhase(req.Phase)
		if !phase.Valid() {
			respondError(c, http.StatusBadRequest, "invalid phase")
			return
		}
	}

	ctx := c.Request.Context()

	clientRepo := postgres.NewClientRepository(h.db.DB())
	if _, err := clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to verify client", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	project := &model.Project{
		Name:              req.Name,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		ZipCode:           req.ZipCode,
		Phase:             phase,
		ProjectType:       req.ProjectType,
		PopulationType:    req.PopulationType,
		HousingType:       req.HousingType,
		TotalUnits:        req.TotalUnits,
		TotalCost:         req.TotalCost,
		ClientID:          req.ClientID,
		SharePointSiteURL: req.SharePointSiteURL,
		SharePointEmail:   req.SharePointEmail,
	}

	repo := postgres.NewProjectRepository(h.db.DB())
	if err := repo.Create(ctx, project); err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondCreated(c, gin.H{
		"id":      project.ID,
		"name":    project.Name,
		"message": "Project created successfully",
	})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewProjectRepository(h.db.DB())

	project, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.ZipCode != nil {
		updates["zip_code"] = *req.ZipCode
	}
	if req.Phase != nil {
		phase := model.ProjectPhase(*req.Phase)
		if !phase.Valid() {
			respondError(c, http.StatusBadRequest, "invalid phase")
			return
		}
		updates["phase"] = phase
	}
	if req.ProjectType != nil {
		updates["project_type"] = *req.ProjectType
	}
	if req.PopulationType != nil {
		updates["population_type"] = *req.PopulationType
	}
	if req.HousingType != nil {
		updates["housing_type"] = *req.HousingType
	}
	if req.TotalUnits != nil {
		updates["total_units"] = *req.TotalUnits
	}
	if req.TotalCost != nil {
		updates["total_cost"] = *req.TotalCost
	}
	if req.SharePointSiteURL != nil {
		updates["sharepoint_site_url"] = *req.SharePointSiteURL
	}
	if req.SharePointEmail != nil {
		updates["sharepoint_email"] = *req.SharePointEmail
	}

	if len(updates) > 0 {
		if err := repo.UpdateFields(ctx, project.ID, updates); err != nil {
			h.logger.Error("failed to update project", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	name := project.Name
	if req.Name != nil {
		name = *req.Name
	}
	respondOK(c, gin.H{
		"id":      project.ID,
		"name":    name,
		"message": "Project updated successfully",
	})
}

func (h *ProjectHandler) DashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	var cached gin.H
	if hit, err := h.cache.GetJSON(ctx, projectStatsCacheKey, &cached); err != nil {
		h.logger.Warn("dashboard stats cache read failed", zap.Error(err))
	} else if hit {
		respondOK(c, cached)
		return
	}

	repo := postgres.NewProjectRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	projects, err := repo.List(ctx, nil, nil)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	appsByProject, err := appRepo.GroupedByProject(ctx)
	if err != nil {
		h.logger.Error("failed to load applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	summary := funding.SummarizePortfolio(projects, appsByProject)

	stats := gin.H{
		"total_projects":     summary.TotalProjects,
		"phase_distribution": summary.PhaseDistribution,
		"financial_summary": gin.H{
			"total_project_cost":      summary.TotalCost,
			"total_funding_secured":   summary.TotalSecured,
			"total_funding_requested": summary.TotalRequested,
			"total_funding_gap":       summary.TotalGap,
		},
	}

	if err := h.cache.SetJSON(ctx, projectStatsCacheKey, stats); err != nil {
		h.logger.Warn("dashboard stats cache write failed", zap.Error(err))
	}

	respondOK(c, stats)
}

// Recommendations scores the active funding sources the project has not yet
// applied to and returns the top candidates.
func (h *ProjectHandler) Recommendations(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewProjectRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())
	sourceRepo := postgres.NewFundingSourceRepository(h.db.DB())

	project, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	apps, err := appRepo.ForProject(ctx, project.ID)
	if err != nil {
		h.logger.Error("failed to load project applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	sources, err := sourceRepo.Active(ctx)
	if err != nil {
		h.logger.Error("failed to load funding sources", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	applied := make(map[uint]bool, len(apps))
	for i := range apps {
		applied[apps[i].FundingSourceID] = true
	}
	available := make([]model.FundingSource, 0, len(sources))
	for i := range sources {
		if !applied[sources[i].ID] {
			available = append(available, sources[i])
		}
	}

	f := funding.Compute(project.TotalCost, apps)
	recommendations := funding.Match(project, f.Gap, available)

	result := make([]gin.H, 0, len(recommendations))
	for _, rec := range recommendations {
		result = append(result, gin.H{
			"funding_source": gin.H{
				"id":               rec.Source.ID,
				"name":             rec.Source.Name,
				"type":             rec.Source.Type,
				"agency":           rec.Source.Agency,
				"award_amount_min": rec.Source.AwardAmountMin,
				"award_amount_max": rec.Source.AwardAmountMax,
			},
			"match_score": rec.Score,
			"reasons":     rec.Reasons,
		})
	}

	respondOK(c, gin.H{
		"project_name":            project.Name,
		"recommendations":         result,
		"total_available_sources": len(available),
	})
}

// Insights returns the rule-derived funding observations for a project.
func (h *ProjectHandler) Insights(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewProjectRepository(h.db.DB())
	appRepo := postgres.NewApplicationRepository(h.db.DB())

	project, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	apps, err := appRepo.ForProject(ctx, project.ID)
	if err != nil {
		h.logger.Error("failed to load project applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	f := funding.Compute(project.TotalCost, apps)
	insights := funding.Insights(project, f, apps)

	result := make([]gin.H, 0, len(insights))
	for _, insight := range insights {
		result = append(result, gin.H{
			"type":    insight.Type,
			"title":   insight.Title,
			"message": insight.Message,
		})
	}

	respondOK(c, gin.H{
		"project_name": project.Name,
		"insights":     result,
		"metrics": gin.H{
			"total_cost":        project.TotalCost,
			"funding_secured":   f.TotalAwarded,
			"funding_requested": f.TotalRequested,
			"funding_gap":       f.Gap,
		},
	})
}
