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

// ReferenceHandler exposes reference-data endpoints.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs a reference handler.
func NewReferenceHandler(svc *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: svc}
}

// Vocabulary godoc
// @Summary Get one dropdown vocabulary
// @Tags Reference
// @Produce json
// @Param kind path string true "Vocabulary kind"
// @Success 200 {object} response.Envelope
// @Router /reference/vocabularies/{kind} [get]
func (h *ReferenceHandler) Vocabulary(c *gin.Context) {
	vocabulary, err := h.service.Vocabulary(c.Request.Context(), models.VocabularyKind(c.Param("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vocabulary, nil)
}

// Policies godoc
// @Summary List expense policies
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/expense-policies [get]
func (h *ReferenceHandler) Policies(c *gin.Context) {
	policies, err := h.service.Policies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policies, nil)
}

// Entities godoc
// @Summary List visitable entities
// @Tags Reference
// @Produce json
// @Param kind query string false "Filter by kind"
// @Param city query string false "Filter by city"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reference/entities [get]
func (h *ReferenceHandler) Entities(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.EntityFilter{SalesmanID: claims.SalesmanID}
	if kind := c.Query("kind"); kind != "" {
		filter.Kind = models.EntityKind(kind)
	}
	filter.City = c.Query("city")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entities, pagination, err := h.service.Entities(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entities, pagination)
}

// Contacts godoc
// @Summary List the known contacts of one entity
// @Tags Reference
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /reference/entities/{id}/contacts [get]
func (h *ReferenceHandler) Contacts(c *gin.Context) {
	contacts, err := h.service.Contacts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contacts, nil)
}

// Allocations godoc
// @Summary List the salesman's specimen allocations
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/allocations [get]
func (h *ReferenceHandler) Allocations(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	allocations, err := h.service.Allocations(c.Request.Context(), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocations, nil)
}
