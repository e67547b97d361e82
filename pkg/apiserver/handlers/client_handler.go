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
)

type ClientHandler struct {
	db     *postgres.Store
	logger *zap.Logger
}

func NewClientHandler(db *postgres.Store, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{db: db, logger: logger}
}

type clientCreateRequest struct {
	Name          string `json:"name"`
	Organization  string `json:"organization"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	ContactPerson string `json:"contact_person"`
}

type clientUpdateRequest struct {
	Name          *string `json:"name"`
	Organization  *string `json:"organization"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	ZipCode       *string `json:"zip_code"`
	ContactPerson *string `json:"contact_person"`
}

func (h *ClientHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	repo := postgres.NewClientRepository(h.db.DB())

	clients, err := repo.List(ctx)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	projectCounts, err := repo.ProjectCounts(ctx)
	if err != nil {
		h.logger.Error("failed to count client projects", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]gin.H, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		result = append(result, gin.H{
			"id":             client.ID,
			"name":           client.Name,
			"organization":   client.Organization,
			"email":          client.Email,
			"phone":          client.Phone,
			"address":        client.Address,
			"city":           client.City,
			"state":          client.State,
			"zip_code":       client.ZipCode,
			"contact_person": client.ContactPerson,
			"projects_count": projectCounts[client.ID],
			"created_at":     formatTimestamp(client.CreatedAt),
		})
	}

	respondList(c, result, len(result))
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewClientRepository(h.db.DB())

	client, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to get client", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	projects, err := repo.ProjectsForClient(ctx, client.ID)
	if err != nil {
		h.logger.Error("failed to list client projects", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	appRepo := postgres.NewApplicationRepository(h.db.DB())
	projectSummaries := make([]gin.H, 0, len(projects))
	for i := range projects {
		project := &projects[i]
		apps, err := appRepo.ForProject(ctx, project.ID)
		if err != nil {
			h.logger.Error("failed to load project applications", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		f := funding.Compute(project.TotalCost, apps)
		projectSummaries = append(projectSummaries, gin.H{
			"id":              project.ID,
			"name":            project.Name,
			"phase":           project.Phase,
			"total_units":     project.TotalUnits,
			"total_cost":      project.TotalCost,
			"funding_secured": f.TotalAwarded,
			"funding_gap":     f.Gap,
		})
	}

	respondOK(c, gin.H{
		"id":             client.ID,
		"name":           client.Name,
		"organization":   client.Organization,
		"email":          client.Email,
		"phone":          client.Phone,
		"address":        client.Address,
		"city":           client.City,
		"state":          client.State,
		"zip_code":       client.ZipCode,
		"contact_person": client.ContactPerson,
		"projects":       projectSummaries,
		"created_at":     formatTimestamp(client.CreatedAt),
		"updated_at":     formatTimestamp(client.UpdatedAt),
	})
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req clientCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "Client name is required")
		return
	}

	client := &model.Client{
		Name:          req.Name,
		Organization:  req.Organization,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		ContactPerson: req.ContactPerson,
	}

	repo := postgres.NewClientRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), client); err != nil {
		h.logger.Error("failed to create client", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondCreated(c, gin.H{
		"id":      client.ID,
		"name":    client.Name,
		"message": "Client created successfully",
	})
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req clientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewClientRepository(h.db.DB())

	client, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to get client", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Organization != nil {
		updates["organization"] = *req.Organization
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
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
	if req.ContactPerson != nil {
		updates["contact_person"] = *req.ContactPerson
	}

	if len(updates) > 0 {
		if err := repo.UpdateFields(ctx, client.ID, updates); err != nil {
			h.logger.Error("failed to update client", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	name := client.Name
	if req.Name != nil {
		name = *req.Name
	}
	respondOK(c, gin.H{
		"id":      client.ID,
		"name":    name,
		"message": "Client updated successfully",
	})
}
