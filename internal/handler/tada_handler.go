package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidya-press/field-crm-api/internal/middleware"
	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/response"
)

// TadaHandler exposes TA/DA claim endpoints.
type TadaHandler struct {
	service *service.TadaService
}

// NewTadaHandler constructs a TA/DA handler.
func NewTadaHandler(svc *service.TadaService) *TadaHandler {
	return &TadaHandler{service: svc}
}

// Create godoc
// @Summary Submit a TA/DA claim
// @Tags Tada
// @Accept json
// @Produce json
// @Param payload body service.CreateClaimRequest true "Claim payload"
// @Success 201 {object} response.Envelope
// @Router /tada-claims [post]
func (h *TadaHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claim, err := h.service.CreateClaim(c.Request.Context(), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, claim)
}

// Get godoc
// @Summary Get a TA/DA claim
// @Tags Tada
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Router /tada-claims/{id} [get]
func (h *TadaHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	claim, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.SalesmanID, claims.Admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// List godoc
// @Summary List TA/DA claims
// @Tags Tada
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tada-claims [get]
func (h *TadaHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.TadaFilter{SalesmanID: claims.SalesmanID}
	if claims.Admin {
		filter.SalesmanID = c.Query("salesmanId")
	}
	if status := c.Query("status"); status != "" {
		filter.Status = models.TadaStatus(status)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	list, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Approve godoc
// @Summary Approve a pending or flagged claim
// @Tags Tada
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Router /tada-claims/{id}/approve [post]
func (h *TadaHandler) Approve(c *gin.Context) {
	claim, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// Reject godoc
// @Summary Reject a pending or flagged claim
// @Tags Tada
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Router /tada-claims/{id}/reject [post]
func (h *TadaHandler) Reject(c *gin.Context) {
	claim, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// MarkPaid godoc
// @Summary Mark an approved claim as paid
// @Tags Tada
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Router /tada-claims/{id}/pay [post]
func (h *TadaHandler) MarkPaid(c *gin.Context) {
	claim, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}
