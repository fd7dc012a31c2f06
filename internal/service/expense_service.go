package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type expenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id string) (*models.Expense, error)
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error)
}

type policyReader interface {
	FindPolicy(ctx context.Context, category string) (*models.ExpensePolicy, error)
}

// PolicyCheck is the result of validating one amount against its category
// policy. The violation is advisory: it is recorded and surfaced, never
// blocking.
type PolicyCheck struct {
	Violation bool   `json:"violation"`
	Message   string `json:"message,omitempty"`
}

// CreateExpenseRequest describes a new draft expense.
type CreateExpenseRequest struct {
	Category    string    `json:"category" validate:"required"`
	ExpenseDate time.Time `json:"expense_date" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description"`
	ReceiptRef  string    `json:"receipt_ref"`
}

// UpdateExpenseRequest rewrites an editable draft expense.
type UpdateExpenseRequest struct {
	Category    string    `json:"category" validate:"required"`
	ExpenseDate time.Time `json:"expense_date" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description"`
	ReceiptRef  string    `json:"receipt_ref"`
}

// ExpenseService owns single-expense entry and the live policy check.
type ExpenseService struct {
	expenses  expenseStore
	policies  policyReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpenseService constructs ExpenseService.
func NewExpenseService(expenses expenseStore, policies policyReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExpenseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{expenses: expenses, policies: policies, metrics: metrics, validator: validate, logger: logger}
}

// ValidatePolicy checks one amount against its category's daily limit. An
// amount equal to the limit is compliant; only exceeding it violates.
func (s *ExpenseService) ValidatePolicy(ctx context.Context, category string, amount int64) (PolicyCheck, error) {
	policy, err := s.policies.FindPolicy(ctx, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return PolicyCheck{}, appErrors.Clone(appErrors.ErrNotFound, "unknown expense category")
		}
		return PolicyCheck{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense policy")
	}
	if amount > policy.DailyLimit {
		return PolicyCheck{
			Violation: true,
			Message:   fmt.Sprintf("amount exceeds the %s daily limit of %d", policy.Category, policy.DailyLimit),
		}, nil
	}
	return PolicyCheck{}, nil
}

// RequiresReceipt reports whether the category demands a receipt at
// submission time.
func (s *ExpenseService) RequiresReceipt(ctx context.Context, category string) (bool, error) {
	policy, err := s.policies.FindPolicy(ctx, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, appErrors.Clone(appErrors.ErrNotFound, "unknown expense category")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense policy")
	}
	return policy.ReceiptRequired, nil
}

// Create stores a draft expense, stamping the live policy flag.
func (s *ExpenseService) Create(ctx context.Context, salesmanID string, req CreateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	check, err := s.ValidatePolicy(ctx, req.Category, req.Amount)
	if err != nil {
		return nil, err
	}
	expense := &models.Expense{
		SalesmanID:      salesmanID,
		Category:        req.Category,
		ExpenseDate:     req.ExpenseDate,
		Amount:          req.Amount,
		Description:     req.Description,
		ReceiptRef:      req.ReceiptRef,
		PolicyViolation: check.Violation,
		Status:          models.ExpenseStatusDraft,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expense")
	}
	if check.Violation && s.metrics != nil {
		s.metrics.CountPolicyViolation()
	}
	return expense, nil
}

// Update rewrites a draft expense, re-running the policy check. Submitted
// expenses are immutable from the salesman's side.
func (s *ExpenseService) Update(ctx context.Context, id, salesmanID string, req UpdateExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expense payload")
	}
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense")
	}
	if expense.SalesmanID != salesmanID {
		return nil, appErrors.ErrForbidden
	}
	if expense.Status != models.ExpenseStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "expense already submitted")
	}
	check, err := s.ValidatePolicy(ctx, req.Category, req.Amount)
	if err != nil {
		return nil, err
	}
	expense.Category = req.Category
	expense.ExpenseDate = req.ExpenseDate
	expense.Amount = req.Amount
	expense.Description = req.Description
	expense.ReceiptRef = req.ReceiptRef
	expense.PolicyViolation = check.Violation
	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update expense")
	}
	return expense, nil
}

// Get returns one expense, restricted to its owner.
func (s *ExpenseService) Get(ctx context.Context, id, salesmanID string) (*models.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense")
	}
	if expense.SalesmanID != salesmanID {
		return nil, appErrors.ErrForbidden
	}
	return expense, nil
}

// List returns expenses with pagination metadata.
func (s *ExpenseService) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, *models.Pagination, error) {
	expenses, total, err := s.expenses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expenses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return expenses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
