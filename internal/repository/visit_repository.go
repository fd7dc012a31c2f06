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

// VisitRepository persists finalized visits. Visits are write-once: there is
// no update path by design.
type VisitRepository struct {
	db *sqlx.DB
}

// NewVisitRepository constructs the repository.
func NewVisitRepository(db *sqlx.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Create stores the visit with its contacts, purposes and specimen lines in
// one transaction.
func (r *VisitRepository) Create(ctx context.Context, visit *models.Visit) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const visitQuery = `INSERT INTO visits (id, salesman_id, entity_id, entity_kind, visit_date, supply_channel,
        manager_ref, payment_amount, payment_mode, feedback, next_visit_date, next_visit_note, total_cost, status, created_at)
        VALUES (:id, :salesman_id, :entity_id, :entity_kind, :visit_date, :supply_channel,
        :manager_ref, :payment_amount, :payment_mode, :feedback, :next_visit_date, :next_visit_note, :total_cost, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, visitQuery, visit); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	const contactQuery = `INSERT INTO visit_contacts (visit_id, contact_id, name, role, phone, email)
        VALUES ($1, $2, $3, $4, $5, $6)`
	for _, contact := range visit.Contacts {
		if _, err := tx.ExecContext(ctx, contactQuery, visit.ID, nullable(contact.ContactID), contact.Name, contact.Role, contact.Phone, contact.Email); err != nil {
			return fmt.Errorf("insert visit contact: %w", err)
		}
	}

	const purposeQuery = `INSERT INTO visit_purposes (visit_id, purpose) VALUES ($1, $2)`
	for _, purpose := range visit.Purposes {
		if _, err := tx.ExecContext(ctx, purposeQuery, visit.ID, purpose); err != nil {
			return fmt.Errorf("insert visit purpose: %w", err)
		}
	}

	const givenQuery = `INSERT INTO visit_given_lines (visit_id, specimen_id, subject, class, title, quantity, unit_mrp, cost)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, line := range visit.GivenLines {
		if _, err := tx.ExecContext(ctx, givenQuery, visit.ID, line.SpecimenID, line.Subject, line.Class, line.Title, line.Quantity, line.UnitMRP, line.Cost); err != nil {
			return fmt.Errorf("insert given line: %w", err)
		}
	}

	const returnedQuery = `INSERT INTO visit_returned_lines (visit_id, specimen_id, subject, class, title, quantity, condition)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, line := range visit.ReturnedLines {
		if _, err := tx.ExecContext(ctx, returnedQuery, visit.ID, line.SpecimenID, line.Subject, line.Class, line.Title, line.Quantity, line.Condition); err != nil {
			return fmt.Errorf("insert returned line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit visit tx: %w", err)
	}
	return nil
}

// FindByID returns a visit with all child records.
func (r *VisitRepository) FindByID(ctx context.Context, id string) (*models.Visit, error) {
	const query = `SELECT id, salesman_id, entity_id, entity_kind, visit_date, supply_channel, manager_ref,
        payment_amount, payment_mode, feedback, next_visit_date, next_visit_note, total_cost, status, created_at
        FROM visits WHERE id = $1`
	var visit models.Visit
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

// List returns visits filtered by salesman, entity and date range.
func (r *VisitRepository) List(ctx context.Context, filter models.VisitFilter) ([]models.Visit, int, error) {
	base := "FROM visits v"
	var conditions []string
	var args []interface{}

	if filter.SalesmanID != "" {
		conditions = append(conditions, fmt.Sprintf("v.salesman_id = $%d", len(args)+1))
		args = append(args, filter.SalesmanID)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("v.entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("v.visit_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("v.visit_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
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

	query := fmt.Sprintf(`SELECT v.id, v.salesman_id, v.entity_id, v.entity_kind, v.visit_date, v.supply_channel, v.manager_ref,
        v.payment_amount, v.payment_mode, v.feedback, v.next_visit_date, v.next_visit_note, v.total_cost, v.status, v.created_at
        %s ORDER BY v.visit_date DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var visits []models.Visit
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}
	return visits, total, nil
}

// ExistsForSalesmanOnDate reports whether any visit is logged for the
// salesman on the given calendar date. The TA/DA validator reads this.
func (r *VisitRepository) ExistsForSalesmanOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM visits WHERE salesman_id = $1 AND visit_date::date = $2::date)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, salesmanID, date); err != nil {
		return false, fmt.Errorf("check visit existence: %w", err)
	}
	return exists, nil
}

// HasSpecimenDataOnDate reports whether any visit of the salesman on the date
// carries specimen-given lines.
func (r *VisitRepository) HasSpecimenDataOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM visits v
        JOIN visit_given_lines g ON g.visit_id = v.id
        WHERE v.salesman_id = $1 AND v.visit_date::date = $2::date)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, salesmanID, date); err != nil {
		return false, fmt.Errorf("check specimen data: %w", err)
	}
	return exists, nil
}

func (r *VisitRepository) loadChildren(ctx context.Context, visit *models.Visit) error {
	const contactQuery = `SELECT COALESCE(contact_id, '') AS contact_id, name, role, phone, email
        FROM visit_contacts WHERE visit_id = $1`
	if err := r.db.SelectContext(ctx, &visit.Contacts, contactQuery, visit.ID); err != nil {
		return fmt.Errorf("load visit contacts: %w", err)
	}

	const purposeQuery = `SELECT purpose FROM visit_purposes WHERE visit_id = $1`
	if err := r.db.SelectContext(ctx, &visit.Purposes, purposeQuery, visit.ID); err != nil {
		return fmt.Errorf("load visit purposes: %w", err)
	}

	const givenQuery = `SELECT specimen_id, subject, class, title, quantity, unit_mrp, cost
        FROM visit_given_lines WHERE visit_id = $1`
	if err := r.db.SelectContext(ctx, &visit.GivenLines, givenQuery, visit.ID); err != nil {
		return fmt.Errorf("load given lines: %w", err)
	}

	const returnedQuery = `SELECT specimen_id, subject, class, title, quantity, condition
        FROM visit_returned_lines WHERE visit_id = $1`
	if err := r.db.SelectContext(ctx, &visit.ReturnedLines, returnedQuery, visit.ID); err != nil {
		return fmt.Errorf("load returned lines: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
