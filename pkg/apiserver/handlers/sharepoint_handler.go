package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/sharepoint"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
)

// SharePointHandler drives site provisioning and document management for
// projects through the Graph client.
type SharePointHandler struct {
	db          *postgres.Store
	client      *sharepoint.Client
	provisioner *sharepoint.Provisioner
	cfg         *config.GraphConfig
	logger      *zap.Logger
}

func NewSharePointHandler(db *postgres.Store, client *sharepoint.Client, provisioner *sharepoint.Provisioner, cfg *config.GraphConfig, logger *zap.Logger) *SharePointHandler {
	return &SharePointHandler{
		db:          db,
		client:      client,
		provisioner: provisioner,
		cfg:         cfg,
		logger:      logger,
	}
}

type createSiteRequest struct {
	OwnerUserID string `json:"owner_user_id"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// CreateSite provisions a collaboration site for a project that does not have
// one yet and stores the resulting site url, mailbox and group id.
func (h *SharePointHandler) CreateSite(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.OwnerUserID == "" {
		respondError(c, http.StatusBadRequest, "owner_user_id is required")
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

	if project.HasSite() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"error":        "SharePoint site already exists for this project",
			"existing_url": project.SharePointSiteURL,
		})
		return
	}

	if !h.cfg.Configured() {
		respondError(c, http.StatusInternalServerError,
			"Graph credentials not configured. Set "+strings.Join(h.cfg.Missing(), ", "))
		return
	}

	appRepo := postgres.NewApplicationRepository(h.db.DB())
	apps, err := appRepo.ForProject(ctx, project.ID)
	if err != nil {
		h.logger.Error("failed to load project applications", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	// One application folder per distinct funding source, in application order.
	seen := map[string]bool{}
	var fundingSources []string
	for i := range apps {
		if apps[i].FundingSource == nil {
			continue
		}
		name := apps[i].FundingSource.Name
		if !seen[name] {
			seen[name] = true
			fundingSources = append(fundingSources, name)
		}
	}

	description := fmt.Sprintf("Affordable housing project in %s, %s", project.City, project.State)
	result, err := h.provisioner.ProvisionSite(ctx, project.Name, description, req.OwnerUserID, fundingSources)
	if err != nil {
		h.logger.Error("site provisioning failed",
			zap.Uint("project_id", project.ID),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to create SharePoint site: "+err.Error())
		return
	}

	if err := repo.SetSiteInfo(ctx, project.ID, result.SiteURL, result.Email, result.GroupID); err != nil {
		h.logger.Error("failed to persist site info",
			zap.Uint("project_id", project.ID),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, gin.H{
		"project_id":          project.ID,
		"project_name":        project.Name,
		"group_id":            result.GroupID,
		"sharepoint_site_url": result.SiteURL,
		"sharepoint_email":    result.Email,
		"folders_created":     result.FoldersCreated,
		"message":             "SharePoint site created successfully",
	})
}

// AddMember grants a user access to the project's site via group membership.
func (h *SharePointHandler) AddMember(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.UserID == "" {
		respondError(c, http.StatusBadRequest, "user_id is required")
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

	if !project.HasSite() {
		respondError(c, http.StatusBadRequest, "No SharePoint site exists for this project")
		return
	}
	if project.SharePointGroupID == "" {
		respondError(c, http.StatusBadRequest, "No SharePoint group ID found for this project")
		return
	}

	if err := h.client.AddMember(ctx, project.SharePointGroupID, req.UserID); err != nil {
		h.logger.Error("failed to add group member",
			zap.Uint("project_id", project.ID),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to add team member: "+err.Error())
		return
	}

	respondOK(c, gin.H{
		"project_id": project.ID,
		"user_id":    req.UserID,
		"message":    "Team member added successfully",
	})
}

// UploadDocument pushes a multipart file into the project's document library
// and records it as a tracked document.
func (h *SharePointHandler) UploadDocument(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
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

	if !project.HasSite() {
		respondError(c, http.StatusBadRequest, "No SharePoint site exists for this project")
		return
	}
	if project.SharePointGroupID == "" {
		respondError(c, http.StatusBadRequest, "No SharePoint group ID found for this project")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fileHeader.Filename == "" {
		respondError(c, http.StatusBadRequest, "No file selected")
		return
	}
	folderPath := c.PostForm("folder_path")

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.client.UploadFile(ctx, project.SharePointGroupID, folderPath, fileHeader.Filename, content)
	if err != nil {
		h.logger.Error("file upload failed",
			zap.Uint("project_id", project.ID),
			zap.String("file_name", fileHeader.Filename),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to upload document: "+err.Error())
		return
	}

	docRepo := postgres.NewDocumentRepository(h.db.DB())
	doc := &model.Document{
		ProjectID:     &project.ID,
		Name:          fileHeader.Filename,
		FilePath:      folderPath,
		SharePointURL: item.WebURL,
		UploadDate:    time.Now().UTC(),
	}
	if err := docRepo.Create(ctx, doc); err != nil {
		h.logger.Warn("failed to record uploaded document",
			zap.Uint("project_id", project.ID),
			zap.Error(err))
	}

	respondOK(c, gin.H{
		"project_id":  project.ID,
		"file_name":   fileHeader.Filename,
		"folder_path": folderPath,
		"file_id":     item.ID,
		"web_url":     item.WebURL,
		"message":     "Document uploaded successfully",
	})
}

// Info reports the stored site coordinates for a project.
func (h *SharePointHandler) Info(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	repo := postgres.NewProjectRepository(h.db.DB())
	project, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, gin.H{
		"project_id":          project.ID,
		"project_name":        project.Name,
		"sharepoint_site_url": project.SharePointSiteURL,
		"sharepoint_email":    project.SharePointEmail,
		"has_sharepoint_site": project.HasSite(),
	})
}

// ConfigCheck verifies Graph credentials and, when present, that a token can
// actually be obtained.
func (h *SharePointHandler) ConfigCheck(c *gin.Context) {
	if missing := h.cfg.Missing(); len(missing) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":           false,
			"configured":        false,
			"missing_variables": missing,
			"message":           "Missing required settings: " + strings.Join(missing, ", "),
		})
		return
	}

	token, err := h.client.AccessToken(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    false,
			"configured": false,
			"error":      "Authentication failed: " + err.Error(),
			"message":    "Settings are present but authentication failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"configured":      true,
		"message":         "SharePoint integration is properly configured",
		"has_valid_token": token != "",
	})
}

// FolderStructure previews the folder taxonomy for the given funding sources.
func (h *SharePointHandler) FolderStructure(c *gin.Context) {
	folders := sharepoint.DefaultFolderStructure(c.QueryArray("funding_sources"))
	respondOK(c, gin.H{
		"folder_structure": folders,
		"total_folders":    len(folders),
	})
}
