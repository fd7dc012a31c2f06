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

// ExpenseHandler exposes single-expense endpoints.
type ExpenseHandler struct {
	service *service.ExpenseService
}

// NewExpenseHandler constructs an expense handler.
func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: svc}
}

// Create godoc
// @Summary Create a draft expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param payload body service.CreateExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	expense, err := h.service.Create(c.Request.Context(), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// Update godoc
// @Summary Update a draft expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param payload body service.UpdateExpenseRequest true "Expense payload"
// @Success 200 {object} response.Envelope
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	expense, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.SalesmanID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expense, nil)
}

// Get godoc
// @Summary Get an expense
// @Tags Expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} response.Envelope
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	expense, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.SalesmanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expense, nil)
}

// List godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.ExpenseFilter{SalesmanID: claims.SalesmanID}
	filter.Category = c.Query("category")
	if status := c.Query("status"); status != "" {
		filter.Status = models.ExpenseStatus(status)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	expenses, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expenses, pagination)
}

// CheckPolicy godoc
// @Summary Check an amount against its category policy
// @Tags Expenses
// @Produce json
// @Param category query string true "Expense category"
// @Param amount query int true "Amount in minor units"
// @Success 200 {object} response.Envelope
// @Router /expenses/policy-check [get]
func (h *ExpenseHandler) CheckPolicy(c *gin.Context) {
	category := c.Query("category")
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if category == "" || err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "category and amount are required"))
		return
	}
	check, err := h.service.ValidatePolicy(c.Request.Context(), category, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check, nil)
}
