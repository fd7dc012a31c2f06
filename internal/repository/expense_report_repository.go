package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// ExpenseReportRepository persists expense reports and the member transition.
type ExpenseReportRepository struct {
	db *sqlx.DB
}

// NewExpenseReportRepository constructs the repository.
func NewExpenseReportRepository(db *sqlx.DB) *ExpenseReportRepository {
	return &ExpenseReportRepository{db: db}
}

// Create stores the report and moves the member expenses to SUBMITTED in one
// transaction. The member transition is irreversible by construction: there
// is no reverse update anywhere in this repository.
func (r *ExpenseReportRepository) Create(ctx context.Context, report *models.ExpenseReport, expenseIDs []string) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const reportQuery = `INSERT INTO expense_reports (id, salesman_id, title, total_amount, violation_count,
        date_from, date_to, status, created_at, updated_at)
        VALUES (:id, :salesman_id, :title, :total_amount, :violation_count,
        :date_from, :date_to, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, reportQuery, report); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	placeholders := make([]string, len(expenseIDs))
	args := []interface{}{report.ID, models.ExpenseStatusSubmitted, now}
	for i, id := range expenseIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}
	memberQuery := fmt.Sprintf(`UPDATE expenses SET report_id = $1, status = $2, updated_at = $3 WHERE id IN (%s)`,
		strings.Join(placeholders, ","))
	if _, err := tx.ExecContext(ctx, memberQuery, args...); err != nil {
		return fmt.Errorf("submit member expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report tx: %w", err)
	}
	return nil
}

// FindByID returns one report without members.
func (r *ExpenseReportRepository) FindByID(ctx context.Context, id string) (*models.ExpenseReport, error) {
	const query = `SELECT id, salesman_id, title, total_amount, violation_count, date_from, date_to,
        status, created_at, updated_at FROM expense_reports WHERE id = $1`
	var report models.ExpenseReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateStatus moves a report to the given lifecycle state.
func (r *ExpenseReportRepository) UpdateStatus(ctx context.Context, id string, status models.ExpenseReportStatus) error {
	const query = `UPDATE expense_reports SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

// List returns reports filtered by the provided criteria.
func (r *ExpenseReportRepository) List(ctx context.Context, filter models.ExpenseReportFilter) ([]models.ExpenseReport, int, error) {
	base := "FROM expense_reports er"
	var conditions []string
	var args []interface{}

	if filter.SalesmanID != "" {
		conditions = append(conditions, fmt.Sprintf("er.salesman_id = $%d", len(args)+1))
		args = append(args, filter.SalesmanID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("er.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT er.id, er.salesman_id, er.title, er.total_amount, er.violation_count,
        er.date_from, er.date_to, er.status, er.created_at, er.updated_at
        %s ORDER BY er.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var reports []models.ExpenseReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return reports, total, nil
}
