package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/housingpipeline/housingpipeline/pkg/billing"
	"github.com/housingpipeline/housingpipeline/pkg/model"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
)

type TimeTrackingHandler struct {
	db     *postgres.Store
	logger *zap.Logger
}

func NewTimeTrackingHandler(db *postgres.Store, logger *zap.Logger) *TimeTrackingHandler {
	return &TimeTrackingHandler{db: db, logger: logger}
}

type timeEntryCreateRequest struct {
	ProjectID   *uint    `json:"project_id"`
	UserName    string   `json:"user_name"`
	Description string   `json:"description"`
	Hours       float64  `json:"hours"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Date        string   `json:"date"`
	IsBillable  *bool    `json:"is_billable"`
	IsInvoiced  *bool    `json:"is_invoiced"`
}

type timeEntryUpdateRequest struct {
	ProjectID   optionalUint `json:"project_id"`
	UserName    *string      `json:"user_name"`
	Description *string      `json:"description"`
	Hours       *float64     `json:"hours"`
	HourlyRate  *float64     `json:"hourly_rate"`
	Date        *string      `json:"date"`
	IsBillable  *bool        `json:"is_billable"`
	IsInvoiced  *bool        `json:"is_invoiced"`
}

type markInvoicedRequest struct {
	EntryIDs []uint `json:"entry_ids"`
}

func (h *TimeTrackingHandler) parseFilter(c *gin.Context) (postgres.TimeEntryFilter, error) {
	var filter postgres.TimeEntryFilter

	projectID, err := parseUintQuery(c.Query("project_id"))
	if err != nil {
		return filter, err
	}
	startDate, err := parseDateQuery(c.Query("start_date"))
	if err != nil {
		return filter, err
	}
	endDate, err := parseDateQuery(c.Query("end_date"))
	if err != nil {
		return filter, err
	}

	filter.ProjectID = projectID
	filter.UserName = c.Query("user_name")
	filter.StartDate = startDate
	filter.EndDate = endDate
	filter.IsBillable = parseBoolFlag(c.Query("is_billable"))
	filter.IsInvoiced = parseBoolFlag(c.Query("is_invoiced"))
	return filter, nil
}

func (h *TimeTrackingHandler) List(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	entries, err := repo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]gin.H, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		var project gin.H
		if entry.Project != nil {
			project = gin.H{
				"id":   entry.Project.ID,
				"name": entry.Project.Name,
			}
		}
		result = append(result, gin.H{
			"id":           entry.ID,
			"project":      project,
			"user_name":    entry.UserName,
			"description":  entry.Description,
			"hours":        entry.Hours,
			"hourly_rate":  entry.HourlyRate,
			"total_amount": entry.Amount(),
			"date":         entry.Date.Format(dateLayout),
			"is_billable":  entry.IsBillable,
			"is_invoiced":  entry.IsInvoiced,
			"created_at":   formatTimestamp(entry.CreatedAt),
		})
	}

	respondList(c, result, len(result))
}

func (h *TimeTrackingHandler) Create(c *gin.Context) {
	var req timeEntryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.UserName == "" {
		respondError(c, http.StatusBadRequest, "User name is required")
		return
	}
	if req.Description == "" {
		respondError(c, http.StatusBadRequest, "Description is required")
		return
	}
	if req.Hours == 0 {
		respondError(c, http.StatusBadRequest, "Hours is required")
		return
	}
	if req.Date == "" {
		respondError(c, http.StatusBadRequest, "Date is required")
		return
	}

	entryDate, err := parseDateQuery(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	if req.ProjectID != nil {
		projectRepo := postgres.NewProjectRepository(h.db.DB())
		if _, err := projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Project not found")
				return
			}
			h.logger.Error("failed to verify project", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	rate := model.DefaultHourlyRate
	if req.HourlyRate != nil {
		rate = *req.HourlyRate
	}
	billable := true
	if req.IsBillable != nil {
		billable = *req.IsBillable
	}
	invoiced := false
	if req.IsInvoiced != nil {
		invoiced = *req.IsInvoiced
	}

	entry := &model.TimeEntry{
		ProjectID:   req.ProjectID,
		UserName:    req.UserName,
		Description: req.Description,
		Hours:       req.Hours,
		HourlyRate:  rate,
		Date:        *entryDate,
		IsBillable:  billable,
		IsInvoiced:  invoiced,
	}

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	if err := repo.Create(ctx, entry); err != nil {
		h.logger.Error("failed to create time entry", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondCreated(c, gin.H{
		"id":           entry.ID,
		"total_amount": entry.Amount(),
		"message":      "Time entry created successfully",
	})
}

func (h *TimeTrackingHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req timeEntryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	repo := postgres.NewTimeEntryRepository(h.db.DB())

	entry, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Time entry not found")
			return
		}
		h.logger.Error("failed to get time entry", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.ProjectID.set {
		if req.ProjectID.value != nil {
			projectRepo := postgres.NewProjectRepository(h.db.DB())
			if _, err := projectRepo.GetByID(ctx, *req.ProjectID.value); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					respondError(c, http.StatusNotFound, "Project not found")
					return
				}
				h.logger.Error("failed to verify project", zap.Error(err))
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
		}
		updates["project_id"] = req.ProjectID.value
	}
	if req.UserName != nil {
		updates["user_name"] = *req.UserName
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Hours != nil {
		updates["hours"] = *req.Hours
	}
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}
	if req.Date != nil {
		parsed, err := parseDateQuery(*req.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		updates["date"] = *parsed
	}
	if req.IsBillable != nil {
		updates["is_billable"] = *req.IsBillable
	}
	if req.IsInvoiced != nil {
		updates["is_invoiced"] = *req.IsInvoiced
	}

	if len(updates) > 0 {
		if err := repo.UpdateFields(ctx, entry.ID, updates); err != nil {
			h.logger.Error("failed to update time entry", zap.Error(err))
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	hours := entry.Hours
	if req.Hours != nil {
		hours = *req.Hours
	}
	rate := entry.HourlyRate
	if req.HourlyRate != nil {
		rate = *req.HourlyRate
	}
	respondOK(c, gin.H{
		"id":           entry.ID,
		"total_amount": hours * rate,
		"message":      "Time entry updated successfully",
	})
}

func (h *TimeTrackingHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	affected, err := repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete time entry", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if affected == 0 {
		respondError(c, http.StatusNotFound, "Time entry not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Time entry deleted successfully",
	})
}

func (h *TimeTrackingHandler) Summary(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	// billable/invoiced flags are not summary filters
	filter.IsBillable = nil
	filter.IsInvoiced = nil

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	entries, err := repo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	summary := billing.Summarize(entries)

	projectSummary := make(gin.H, len(summary.ProjectSummary))
	for name, rollup := range summary.ProjectSummary {
		projectSummary[name] = gin.H{
			"hours":          rollup.Hours,
			"billable_hours": rollup.BillableHours,
			"amount":         rollup.Amount,
		}
	}
	userSummary := make(gin.H, len(summary.UserSummary))
	for name, rollup := range summary.UserSummary {
		userSummary[name] = gin.H{
			"hours":          rollup.Hours,
			"billable_hours": rollup.BillableHours,
			"amount":         rollup.Amount,
		}
	}

	respondOK(c, gin.H{
		"totals": gin.H{
			"total_hours":           summary.Totals.TotalHours,
			"total_billable_hours":  summary.Totals.TotalBillableHours,
			"total_amount":          summary.Totals.TotalAmount,
			"total_invoiced_amount": summary.Totals.TotalInvoicedAmount,
			"total_unbilled_amount": summary.Totals.TotalUnbilledAmount,
		},
		"project_summary": projectSummary,
		"user_summary":    userSummary,
		"entries_count":   summary.EntriesCount,
	})
}

func (h *TimeTrackingHandler) InvoiceData(c *gin.Context) {
	projectID, err := parseUintQuery(c.Query("project_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	entries, err := repo.Unbilled(c.Request.Context(), projectID, c.Query("user_name"))
	if err != nil {
		h.logger.Error("failed to load unbilled entries", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	invoice := billing.BuildInvoice(entries)

	items := make([]gin.H, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, gin.H{
			"id":           item.EntryID,
			"date":         item.Date.Format(dateLayout),
			"project_name": item.ProjectName,
			"description":  item.Description,
			"hours":        item.Hours,
			"hourly_rate":  item.HourlyRate,
			"line_total":   item.LineTotal,
			"user_name":    item.UserName,
		})
	}

	respondOK(c, gin.H{
		"invoice_items": items,
		"total_amount":  invoice.TotalAmount,
		"total_hours":   invoice.TotalHours,
		"items_count":   len(items),
	})
}

func (h *TimeTrackingHandler) MarkInvoiced(c *gin.Context) {
	var req markInvoicedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(req.EntryIDs) == 0 {
		respondError(c, http.StatusBadRequest, "Entry IDs are required")
		return
	}

	repo := postgres.NewTimeEntryRepository(h.db.DB())
	updated, err := repo.MarkInvoiced(c.Request.Context(), req.EntryIDs)
	if err != nil {
		h.logger.Error("failed to mark entries invoiced", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, gin.H{
		"updated_count": updated,
		"message":       fmt.Sprintf("%d time entries marked as invoiced", updated),
	})
}
