package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidya-press/field-crm-api/internal/middleware"
	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/response"
)

// VisitHandler exposes the visit wizard and logged-visit endpoints.
type VisitHandler struct {
	flow   *service.VisitFlowService
	visits *service.VisitService
}

// NewVisitHandler constructs a visit handler.
func NewVisitHandler(flow *service.VisitFlowService, visits *service.VisitService) *VisitHandler {
	return &VisitHandler{flow: flow, visits: visits}
}

// StartDraft godoc
// @Summary Start a visit draft
// @Tags Visits
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /visits/drafts [post]
func (h *VisitHandler) StartDraft(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.flow.StartDraft(c.Request.Context(), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// GetDraft godoc
// @Summary Get a visit draft
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id} [get]
func (h *VisitHandler) GetDraft(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.flow.Draft(c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// RequiredFields godoc
// @Summary Required fields for the draft's current step
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/required-fields [get]
func (h *VisitHandler) RequiredFields(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	fields, err := h.flow.RequiredFields(c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fields, nil)
}

// SetEntity godoc
// @Summary Select the visited entity
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetEntityRequest true "Entity selection"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/entity [put]
func (h *VisitHandler) SetEntity(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetEntity(c.Request.Context(), c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetContacts godoc
// @Summary Record the contact selection
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetContactsRequest true "Contact selection"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/contacts [put]
func (h *VisitHandler) SetContacts(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetContacts(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetPurposes godoc
// @Summary Record the visit purposes
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetPurposesRequest true "Purposes"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/purposes [put]
func (h *VisitHandler) SetPurposes(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetPurposesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetPurposes(c.Request.Context(), c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetJointWorking godoc
// @Summary Record the accompanying manager
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetJointWorkingRequest true "Manager reference"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/joint-working [put]
func (h *VisitHandler) SetJointWorking(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetJointWorkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetJointWorking(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// AddGivenLine godoc
// @Summary Add a specimen-given line
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.AddGivenLineRequest true "Specimen line"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/given-lines [post]
func (h *VisitHandler) AddGivenLine(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AddGivenLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.AddGivenLine(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// RemoveGivenLine godoc
// @Summary Remove a specimen-given line by index
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Line index"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/given-lines/{index} [delete]
func (h *VisitHandler) RemoveGivenLine(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid line index"))
		return
	}
	draft, err := h.flow.RemoveGivenLine(c.Param("id"), claims.SalesmanID, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// AddReturnedLine godoc
// @Summary Add a specimen-return line
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.AddReturnedLineRequest true "Return line"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/returned-lines [post]
func (h *VisitHandler) AddReturnedLine(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AddReturnedLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.AddReturnedLine(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// RemoveReturnedLine godoc
// @Summary Remove a specimen-return line by index
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Param index path int true "Line index"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/returned-lines/{index} [delete]
func (h *VisitHandler) RemoveReturnedLine(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid line index"))
		return
	}
	draft, err := h.flow.RemoveReturnedLine(c.Param("id"), claims.SalesmanID, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetFeedback godoc
// @Summary Record feedback and payment fields
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/feedback [put]
func (h *VisitHandler) SetFeedback(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetFeedback(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// SetNextVisit godoc
// @Summary Schedule the follow-up visit
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body service.SetNextVisitRequest true "Next visit payload"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/next-visit [put]
func (h *VisitHandler) SetNextVisit(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SetNextVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.flow.SetNextVisit(c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Next godoc
// @Summary Advance the wizard one step
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/next [post]
func (h *VisitHandler) Next(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.flow.Next(c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Back godoc
// @Summary Move the wizard one step back
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /visits/drafts/{id}/back [post]
func (h *VisitHandler) Back(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.flow.Back(c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// CancelDraft godoc
// @Summary Discard a visit draft
// @Tags Visits
// @Param id path string true "Draft ID"
// @Success 204
// @Router /visits/drafts/{id} [delete]
func (h *VisitHandler) CancelDraft(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.flow.Cancel(c.Param("id"), claims.SalesmanID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit the draft as an immutable visit record
// @Tags Visits
// @Produce json
// @Param id path string true "Draft ID"
// @Success 201 {object} response.Envelope
// @Router /visits/drafts/{id}/submit [post]
func (h *VisitHandler) Submit(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	visit, err := h.flow.Submit(c.Request.Context(), c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, visit)
}

// Get godoc
// @Summary Get a logged visit
// @Tags Visits
// @Produce json
// @Param id path string true "Visit ID"
// @Success 200 {object} response.Envelope
// @Router /visits/{id} [get]
func (h *VisitHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	visit, err := h.visits.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !claims.Admin && visit.SalesmanID != claims.SalesmanID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, visit, nil)
}

// List godoc
// @Summary List logged visits
// @Tags Visits
// @Produce json
// @Param entityId query string false "Filter by entity"
// @Param from query string false "Filter from date (RFC3339)"
// @Param to query string false "Filter to date (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /visits [get]
func (h *VisitHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.VisitFilter{SalesmanID: claims.SalesmanID}
	if claims.Admin {
		filter.SalesmanID = c.Query("salesmanId")
	}
	filter.EntityID = c.Query("entityId")
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	visits, pagination, err := h.visits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visits, pagination)
}
