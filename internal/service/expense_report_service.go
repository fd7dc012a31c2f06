package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/export"
)

type reportStore interface {
	Create(ctx context.Context, report *models.ExpenseReport, expenseIDs []string) error
	FindByID(ctx context.Context, id string) (*models.ExpenseReport, error)
	UpdateStatus(ctx context.Context, id string, status models.ExpenseReportStatus) error
	List(ctx context.Context, filter models.ExpenseReportFilter) ([]models.ExpenseReport, int, error)
}

type reportExpenseReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Expense, error)
	FindByReport(ctx context.Context, reportID string) ([]models.Expense, error)
}

// CreateReportRequest groups draft expenses into a report.
type CreateReportRequest struct {
	Title      string   `json:"title"`
	ExpenseIDs []string `json:"expense_ids"`
}

// ExpenseReportService aggregates draft expenses into submitted reports and
// walks them through the approval lifecycle.
type ExpenseReportService struct {
	reports   reportStore
	expenses  reportExpenseReader
	policies  policyReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpenseReportService constructs ExpenseReportService.
func NewExpenseReportService(reports reportStore, expenses reportExpenseReader, policies policyReader, validate *validator.Validate, logger *zap.Logger) *ExpenseReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseReportService{
		reports:   reports,
		expenses:  expenses,
		policies:  policies,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Create validates the selection, derives totals and the covered date range,
// and submits the report. Member expenses move to SUBMITTED atomically with
// the report insert and never move back.
func (s *ExpenseReportService) Create(ctx context.Context, salesmanID string, req CreateReportRequest) (*models.ExpenseReport, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, appErrors.ErrMissingTitle
	}
	if len(req.ExpenseIDs) == 0 {
		return nil, appErrors.ErrEmptySelection
	}

	members, err := s.expenses.FindByIDs(ctx, req.ExpenseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected expenses")
	}
	if len(members) != len(req.ExpenseIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more selected expenses do not exist")
	}

	receiptRequired := map[string]bool{}
	var total int64
	var violations int
	var dateFrom, dateTo time.Time
	for _, expense := range members {
		if expense.SalesmanID != salesmanID {
			return nil, appErrors.ErrForbidden
		}
		if expense.Status != models.ExpenseStatusDraft {
			return nil, appErrors.Clone(appErrors.ErrConflict, "expense already belongs to a report")
		}
		required, ok := receiptRequired[expense.Category]
		if !ok {
			policy, err := s.policies.FindPolicy(ctx, expense.Category)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense policy")
			}
			required = policy.ReceiptRequired
			receiptRequired[expense.Category] = required
		}
		if required && expense.ReceiptRef == "" {
			return nil, appErrors.Clone(appErrors.ErrReceiptRequired,
				fmt.Sprintf("expense dated %s in category %s is missing its receipt", expense.ExpenseDate.Format("2006-01-02"), expense.Category))
		}
		total += expense.Amount
		if expense.PolicyViolation {
			violations++
		}
		if dateFrom.IsZero() || expense.ExpenseDate.Before(dateFrom) {
			dateFrom = expense.ExpenseDate
		}
		if dateTo.IsZero() || expense.ExpenseDate.After(dateTo) {
			dateTo = expense.ExpenseDate
		}
	}

	report := &models.ExpenseReport{
		SalesmanID:     salesmanID,
		Title:          strings.TrimSpace(req.Title),
		TotalAmount:    total,
		ViolationCount: violations,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		Status:         models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report, req.ExpenseIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expense report")
	}
	report.Expenses = members
	s.logger.Info("expense report submitted",
		zap.String("report_id", report.ID),
		zap.String("salesman_id", salesmanID),
		zap.Int64("total_amount", total),
		zap.Int("violation_count", violations))
	return report, nil
}

// Get returns one report with its member expenses.
func (s *ExpenseReportService) Get(ctx context.Context, id, salesmanID string, admin bool) (*models.ExpenseReport, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense report")
	}
	if !admin && report.SalesmanID != salesmanID {
		return nil, appErrors.ErrForbidden
	}
	members, err := s.expenses.FindByReport(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report expenses")
	}
	report.Expenses = members
	return report, nil
}

// List returns reports with pagination metadata.
func (s *ExpenseReportService) List(ctx context.Context, filter models.ExpenseReportFilter) ([]models.ExpenseReport, *models.Pagination, error) {
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expense reports")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return reports, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve moves a pending report to APPROVED.
func (s *ExpenseReportService) Approve(ctx context.Context, id string) (*models.ExpenseReport, error) {
	return s.transition(ctx, id, models.ReportStatusApproved, models.ReportStatusPending)
}

// Reject moves a pending report to REJECTED.
func (s *ExpenseReportService) Reject(ctx context.Context, id string) (*models.ExpenseReport, error) {
	return s.transition(ctx, id, models.ReportStatusRejected, models.ReportStatusPending)
}

// MarkPaid moves an approved report to PAID.
func (s *ExpenseReportService) MarkPaid(ctx context.Context, id string) (*models.ExpenseReport, error) {
	return s.transition(ctx, id, models.ReportStatusPaid, models.ReportStatusApproved)
}

func (s *ExpenseReportService) transition(ctx context.Context, id string, to models.ExpenseReportStatus, from ...models.ExpenseReportStatus) (*models.ExpenseReport, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expense report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense report")
	}
	allowed := false
	for _, status := range from {
		if report.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("cannot move report from %s to %s", report.Status, to))
	}
	if err := s.reports.UpdateStatus(ctx, id, to); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}
	report.Status = to
	s.logger.Info("expense report status changed", zap.String("report_id", id), zap.String("status", string(to)))
	return report, nil
}

// ExportCSV renders the report and its members as CSV.
func (s *ExpenseReportService) ExportCSV(ctx context.Context, id, salesmanID string, admin bool) ([]byte, error) {
	report, err := s.Get(ctx, id, salesmanID, admin)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(reportDataset(report))
}

// ExportPDF renders the report and its members as PDF.
func (s *ExpenseReportService) ExportPDF(ctx context.Context, id, salesmanID string, admin bool) ([]byte, error) {
	report, err := s.Get(ctx, id, salesmanID, admin)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(reportDataset(report), fmt.Sprintf("Expense Report: %s", report.Title))
}

func reportDataset(report *models.ExpenseReport) export.Dataset {
	headers := []string{"Date", "Category", "Description", "Amount", "Receipt", "Violation"}
	rows := make([]map[string]string, 0, len(report.Expenses))
	for _, expense := range report.Expenses {
		violation := ""
		if expense.PolicyViolation {
			violation = "OVER LIMIT"
		}
		rows = append(rows, map[string]string{
			"Date":        expense.ExpenseDate.Format("2006-01-02"),
			"Category":    expense.Category,
			"Description": expense.Description,
			"Amount":      formatMoney(expense.Amount),
			"Receipt":     expense.ReceiptRef,
			"Violation":   violation,
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Summary: map[string]string{
			"Description": "Total",
			"Amount":      formatMoney(report.TotalAmount),
			"Violation":   strconv.Itoa(report.ViolationCount) + " flagged",
		},
	}
}

// formatMoney renders minor units as a decimal string, e.g. 12550 -> "125.50".
func formatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
