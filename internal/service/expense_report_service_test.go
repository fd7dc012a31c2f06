package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type reportStoreStub struct {
	reports   map[string]*models.ExpenseReport
	submitted [][]string
}

func newReportStoreStub() *reportStoreStub {
	return &reportStoreStub{reports: map[string]*models.ExpenseReport{}}
}

func (s *reportStoreStub) Create(ctx context.Context, report *models.ExpenseReport, expenseIDs []string) error {
	report.ID = "rep-1"
	s.reports[report.ID] = report
	s.submitted = append(s.submitted, expenseIDs)
	return nil
}

func (s *reportStoreStub) FindByID(ctx context.Context, id string) (*models.ExpenseReport, error) {
	if r, ok := s.reports[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reportStoreStub) UpdateStatus(ctx context.Context, id string, status models.ExpenseReportStatus) error {
	s.reports[id].Status = status
	return nil
}

func (s *reportStoreStub) List(ctx context.Context, filter models.ExpenseReportFilter) ([]models.ExpenseReport, int, error) {
	out := []models.ExpenseReport{}
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, len(out), nil
}

type reportExpenseReaderStub struct {
	expenses map[string]models.Expense
}

func (s *reportExpenseReaderStub) FindByIDs(ctx context.Context, ids []string) ([]models.Expense, error) {
	out := []models.Expense{}
	for _, id := range ids {
		if e, ok := s.expenses[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *reportExpenseReaderStub) FindByReport(ctx context.Context, reportID string) ([]models.Expense, error) {
	out := []models.Expense{}
	for _, e := range s.expenses {
		if e.ReportID != nil && *e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func reportFixture() (*ExpenseReportService, *reportStoreStub, *reportExpenseReaderStub) {
	store := newReportStoreStub()
	expenses := &reportExpenseReaderStub{expenses: map[string]models.Expense{
		"e1": {ID: "e1", SalesmanID: "s1", Category: "MEALS", ExpenseDate: day(7), Amount: 30000, Status: models.ExpenseStatusDraft},
		"e2": {ID: "e2", SalesmanID: "s1", Category: "MEALS", ExpenseDate: day(5), Amount: 60000, PolicyViolation: true, Status: models.ExpenseStatusDraft},
		"e3": {ID: "e3", SalesmanID: "s1", Category: "LODGING", ExpenseDate: day(9), Amount: 120000, ReceiptRef: "R-33", Status: models.ExpenseStatusDraft},
		"e4": {ID: "e4", SalesmanID: "s1", Category: "LODGING", ExpenseDate: day(8), Amount: 90000, Status: models.ExpenseStatusDraft},
		"e5": {ID: "e5", SalesmanID: "s2", Category: "MEALS", ExpenseDate: day(3), Amount: 10000, Status: models.ExpenseStatusDraft},
	}}
	return NewExpenseReportService(store, expenses, stubPolicies(), nil, nil), store, expenses
}

func TestCreateReportAggregates(t *testing.T) {
	svc, store, _ := reportFixture()

	report, err := svc.Create(context.Background(), "s1", CreateReportRequest{
		Title:      "Week 2 tour",
		ExpenseIDs: []string{"e1", "e2", "e3"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(210000), report.TotalAmount)
	assert.Equal(t, 1, report.ViolationCount)
	assert.Equal(t, day(5), report.DateFrom)
	assert.Equal(t, day(9), report.DateTo)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	require.Len(t, store.submitted, 1)
	assert.Equal(t, []string{"e1", "e2", "e3"}, store.submitted[0])
}

func TestCreateReportTitleAndSelectionRequired(t *testing.T) {
	svc, _, _ := reportFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "s1", CreateReportRequest{Title: "  ", ExpenseIDs: []string{"e1"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingTitle))

	_, err = svc.Create(ctx, "s1", CreateReportRequest{Title: "Week 2"})
	assert.True(t, appErrors.Is(err, appErrors.ErrEmptySelection))
}

func TestCreateReportReceiptEnforcedAtSubmission(t *testing.T) {
	svc, _, _ := reportFixture()

	// e4 is LODGING with no receipt reference
	_, err := svc.Create(context.Background(), "s1", CreateReportRequest{
		Title:      "Week 2 tour",
		ExpenseIDs: []string{"e3", "e4"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrReceiptRequired))
}

func TestCreateReportRejectsForeignAndMissingExpenses(t *testing.T) {
	svc, _, _ := reportFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "s1", CreateReportRequest{Title: "T", ExpenseIDs: []string{"e1", "e5"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, "s1", CreateReportRequest{Title: "T", ExpenseIDs: []string{"e1", "ghost"}})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCreateReportRejectsAlreadySubmittedMember(t *testing.T) {
	svc, _, expenses := reportFixture()

	member := expenses.expenses["e1"]
	member.Status = models.ExpenseStatusSubmitted
	expenses.expenses["e1"] = member

	_, err := svc.Create(context.Background(), "s1", CreateReportRequest{Title: "T", ExpenseIDs: []string{"e1"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestReportLifecycleTransitions(t *testing.T) {
	svc, store, _ := reportFixture()
	ctx := context.Background()

	report, err := svc.Create(ctx, "s1", CreateReportRequest{Title: "T", ExpenseIDs: []string{"e1"}})
	require.NoError(t, err)

	// pending cannot be paid directly
	_, err = svc.MarkPaid(ctx, report.ID)
	require.Error(t, err)

	approved, err := svc.Approve(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, approved.Status)

	// approved cannot be rejected
	_, err = svc.Reject(ctx, report.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))

	paid, err := svc.MarkPaid(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPaid, paid.Status)

	// paid is terminal
	_, err = svc.Approve(ctx, report.ID)
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusPaid, store.reports[report.ID].Status)
}

func TestReportRejectFromPending(t *testing.T) {
	svc, _, _ := reportFixture()
	ctx := context.Background()

	report, err := svc.Create(ctx, "s1", CreateReportRequest{Title: "T", ExpenseIDs: []string{"e1"}})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRejected, rejected.Status)

	_, err = svc.Approve(ctx, report.ID)
	require.Error(t, err)
}

func TestReportExportCSVCarriesTotals(t *testing.T) {
	svc, store, expenses := reportFixture()
	ctx := context.Background()

	report, err := svc.Create(ctx, "s1", CreateReportRequest{Title: "Week 2 tour", ExpenseIDs: []string{"e2"}})
	require.NoError(t, err)

	member := expenses.expenses["e2"]
	member.ReportID = &store.reports[report.ID].ID
	expenses.expenses["e2"] = member

	payload, err := svc.ExportCSV(ctx, report.ID, "s1", false)
	require.NoError(t, err)
	body := string(payload)
	assert.Contains(t, body, "2025-01-05")
	assert.Contains(t, body, "600.00")
	assert.Contains(t, body, "OVER LIMIT")
	assert.Contains(t, body, "Total")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "125.50", formatMoney(12550))
	assert.Equal(t, "0.05", formatMoney(5))
	assert.Equal(t, "-3.00", formatMoney(-300))
}
