package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type expenseStoreStub struct {
	expenses map[string]*models.Expense
	seq      int
}

func newExpenseStoreStub() *expenseStoreStub {
	return &expenseStoreStub{expenses: map[string]*models.Expense{}}
}

func (s *expenseStoreStub) Create(ctx context.Context, expense *models.Expense) error {
	s.seq++
	expense.ID = fmt.Sprintf("exp-%d", s.seq)
	s.expenses[expense.ID] = expense
	return nil
}

func (s *expenseStoreStub) Update(ctx context.Context, expense *models.Expense) error {
	s.expenses[expense.ID] = expense
	return nil
}

func (s *expenseStoreStub) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	if e, ok := s.expenses[id]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *expenseStoreStub) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error) {
	out := []models.Expense{}
	for _, e := range s.expenses {
		out = append(out, *e)
	}
	return out, len(out), nil
}

type policyReaderStub struct {
	policies map[string]models.ExpensePolicy
}

func (s *policyReaderStub) FindPolicy(ctx context.Context, category string) (*models.ExpensePolicy, error) {
	if p, ok := s.policies[category]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func stubPolicies() *policyReaderStub {
	return &policyReaderStub{policies: map[string]models.ExpensePolicy{
		"MEALS":   {Category: "MEALS", DailyLimit: 50000, ReceiptRequired: false},
		"LODGING": {Category: "LODGING", DailyLimit: 250000, ReceiptRequired: true},
	}}
}

func TestValidatePolicyBoundary(t *testing.T) {
	svc := NewExpenseService(newExpenseStoreStub(), stubPolicies(), nil, nil, nil)
	ctx := context.Background()

	// amount equal to the limit is compliant
	check, err := svc.ValidatePolicy(ctx, "MEALS", 50000)
	require.NoError(t, err)
	assert.False(t, check.Violation)

	check, err = svc.ValidatePolicy(ctx, "MEALS", 50001)
	require.NoError(t, err)
	assert.True(t, check.Violation)
	assert.NotEmpty(t, check.Message)

	_, err = svc.ValidatePolicy(ctx, "HELICOPTER", 100)
	require.Error(t, err)
}

func TestCreateExpenseStampsViolation(t *testing.T) {
	store := newExpenseStoreStub()
	svc := NewExpenseService(store, stubPolicies(), nil, nil, nil)

	expense, err := svc.Create(context.Background(), "s1", CreateExpenseRequest{
		Category:    "MEALS",
		ExpenseDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:      60000,
	})
	require.NoError(t, err)
	assert.True(t, expense.PolicyViolation)
	assert.Equal(t, models.ExpenseStatusDraft, expense.Status)
	assert.Equal(t, "s1", expense.SalesmanID)
}

func TestUpdateExpenseRecomputesViolation(t *testing.T) {
	store := newExpenseStoreStub()
	svc := NewExpenseService(store, stubPolicies(), nil, nil, nil)
	ctx := context.Background()

	expense, err := svc.Create(ctx, "s1", CreateExpenseRequest{
		Category:    "MEALS",
		ExpenseDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:      60000,
	})
	require.NoError(t, err)
	require.True(t, expense.PolicyViolation)

	updated, err := svc.Update(ctx, expense.ID, "s1", UpdateExpenseRequest{
		Category:    "MEALS",
		ExpenseDate: expense.ExpenseDate,
		Amount:      40000,
	})
	require.NoError(t, err)
	assert.False(t, updated.PolicyViolation)
}

func TestUpdateExpenseGuards(t *testing.T) {
	store := newExpenseStoreStub()
	svc := NewExpenseService(store, stubPolicies(), nil, nil, nil)
	ctx := context.Background()

	expense, err := svc.Create(ctx, "s1", CreateExpenseRequest{
		Category:    "MEALS",
		ExpenseDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Amount:      10000,
	})
	require.NoError(t, err)

	// not the owner
	_, err = svc.Update(ctx, expense.ID, "s2", UpdateExpenseRequest{
		Category: "MEALS", ExpenseDate: expense.ExpenseDate, Amount: 10000,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	// submitted expenses are immutable
	store.expenses[expense.ID].Status = models.ExpenseStatusSubmitted
	_, err = svc.Update(ctx, expense.ID, "s1", UpdateExpenseRequest{
		Category: "MEALS", ExpenseDate: expense.ExpenseDate, Amount: 10000,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestRequiresReceipt(t *testing.T) {
	svc := NewExpenseService(newExpenseStoreStub(), stubPolicies(), nil, nil, nil)
	ctx := context.Background()

	required, err := svc.RequiresReceipt(ctx, "LODGING")
	require.NoError(t, err)
	assert.True(t, required)

	required, err = svc.RequiresReceipt(ctx, "MEALS")
	require.NoError(t, err)
	assert.False(t, required)
}
