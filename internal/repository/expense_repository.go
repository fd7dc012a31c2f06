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

// ExpenseRepository persists individual expenses.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository constructs the repository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create persists a new draft expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now
	if expense.Status == "" {
		expense.Status = models.ExpenseStatusDraft
	}
	const query = `INSERT INTO expenses (id, salesman_id, category, expense_date, amount, description, receipt_ref,
        policy_violation, report_id, status, created_at, updated_at)
        VALUES (:id, :salesman_id, :category, :expense_date, :amount, :description, :receipt_ref,
        :policy_violation, :report_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a draft expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().UTC()
	const query = `UPDATE expenses SET category = :category, expense_date = :expense_date, amount = :amount,
        description = :description, receipt_ref = :receipt_ref, policy_violation = :policy_violation, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, expense); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// FindByID returns one expense.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	const query = `SELECT id, salesman_id, category, expense_date, amount, description, receipt_ref,
        policy_violation, report_id, status, created_at, updated_at FROM expenses WHERE id = $1`
	var expense models.Expense
	if err := r.db.GetContext(ctx, &expense, query, id); err != nil {
		return nil, err
	}
	return &expense, nil
}

// FindByIDs returns the expenses matching the given ids.
func (r *ExpenseRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Expense, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, salesman_id, category, expense_date, amount, description, receipt_ref,
        policy_violation, report_id, status, created_at, updated_at FROM expenses WHERE id IN (%s)`,
		strings.Join(placeholders, ","))
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	return expenses, nil
}

// FindByReport returns the member expenses of a report.
func (r *ExpenseRepository) FindByReport(ctx context.Context, reportID string) ([]models.Expense, error) {
	const query = `SELECT id, salesman_id, category, expense_date, amount, description, receipt_ref,
        policy_violation, report_id, status, created_at, updated_at FROM expenses WHERE report_id = $1
        ORDER BY expense_date ASC`
	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, reportID); err != nil {
		return nil, fmt.Errorf("list report expenses: %w", err)
	}
	return expenses, nil
}

// List returns expenses filtered by the provided criteria.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error) {
	base := "FROM expenses x"
	var conditions []string
	var args []interface{}

	if filter.SalesmanID != "" {
		conditions = append(conditions, fmt.Sprintf("x.salesman_id = $%d", len(args)+1))
		args = append(args, filter.SalesmanID)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("x.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("x.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT x.id, x.salesman_id, x.category, x.expense_date, x.amount, x.description, x.receipt_ref,
        x.policy_violation, x.report_id, x.status, x.created_at, x.updated_at
        %s ORDER BY x.expense_date DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var expenses []models.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	return expenses, total, nil
}
