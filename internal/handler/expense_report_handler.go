package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidya-press/field-crm-api/internal/middleware"
	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/response"
)

// ExpenseReportHandler exposes expense-report endpoints.
type ExpenseReportHandler struct {
	service *service.ExpenseReportService
}

// NewExpenseReportHandler constructs an expense-report handler.
func NewExpenseReportHandler(svc *service.ExpenseReportService) *ExpenseReportHandler {
	return &ExpenseReportHandler{service: svc}
}

// Create godoc
// @Summary Submit draft expenses as a report
// @Tags ExpenseReports
// @Accept json
// @Produce json
// @Param payload body service.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /expense-reports [post]
func (h *ExpenseReportHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.service.Create(c.Request.Context(), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Get godoc
// @Summary Get an expense report with its members
// @Tags ExpenseReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /expense-reports/{id} [get]
func (h *ExpenseReportHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.SalesmanID, claims.Admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// List godoc
// @Summary List expense reports
// @Tags ExpenseReports
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /expense-reports [get]
func (h *ExpenseReportHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.ExpenseReportFilter{SalesmanID: claims.SalesmanID}
	if claims.Admin {
		filter.SalesmanID = c.Query("salesmanId")
	}
	if status := c.Query("status"); status != "" {
		filter.Status = models.ExpenseReportStatus(status)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	reports, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// Approve godoc
// @Summary Approve a pending report
// @Tags ExpenseReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /expense-reports/{id}/approve [post]
func (h *ExpenseReportHandler) Approve(c *gin.Context) {
	report, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Reject godoc
// @Summary Reject a pending report
// @Tags ExpenseReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /expense-reports/{id}/reject [post]
func (h *ExpenseReportHandler) Reject(c *gin.Context) {
	report, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// MarkPaid godoc
// @Summary Mark an approved report paid
// @Tags ExpenseReports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /expense-reports/{id}/pay [post]
func (h *ExpenseReportHandler) MarkPaid(c *gin.Context) {
	report, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportCSV godoc
// @Summary Export a report as CSV
// @Tags ExpenseReports
// @Produce text/csv
// @Param id path string true "Report ID"
// @Success 200 {file} file
// @Router /expense-reports/{id}/export/csv [get]
func (h *ExpenseReportHandler) ExportCSV(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.ExportCSV(c.Request.Context(), c.Param("id"), claims.SalesmanID, claims.Admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("expense-report-%s.csv", c.Param("id"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export a report as PDF
// @Tags ExpenseReports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} file
// @Router /expense-reports/{id}/export/pdf [get]
func (h *ExpenseReportHandler) ExportPDF(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payload, err := h.service.ExportPDF(c.Request.Context(), c.Param("id"), claims.SalesmanID, claims.Admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("expense-report-%s.pdf", c.Param("id"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
