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

// TadaRepository persists travel-allowance claims.
type TadaRepository struct {
	db *sqlx.DB
}

// NewTadaRepository constructs the repository.
func NewTadaRepository(db *sqlx.DB) *TadaRepository {
	return &TadaRepository{db: db}
}

// Create persists a new claim with its derived predicates.
func (r *TadaRepository) Create(ctx context.Context, claim *models.TadaClaim) error {
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = now
	}
	claim.UpdatedAt = now
	const query = `INSERT INTO tada_claims (id, salesman_id, claim_date, city, travel_mode, amount,
        has_visit, has_specimen_data, within_limit, status, created_at, updated_at)
        VALUES (:id, :salesman_id, :claim_date, :city, :travel_mode, :amount,
        :has_visit, :has_specimen_data, :within_limit, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, claim); err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

// FindByID returns one claim.
func (r *TadaRepository) FindByID(ctx context.Context, id string) (*models.TadaClaim, error) {
	const query = `SELECT id, salesman_id, claim_date, city, travel_mode, amount, has_visit, has_specimen_data,
        within_limit, status, created_at, updated_at FROM tada_claims WHERE id = $1`
	var claim models.TadaClaim
	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		return nil, err
	}
	return &claim, nil
}

// UpdateStatus moves a claim to a new lifecycle state.
func (r *TadaRepository) UpdateStatus(ctx context.Context, id string, status models.TadaStatus) error {
	const query = `UPDATE tada_claims SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	return nil
}

// List returns claims filtered by the provided criteria.
func (r *TadaRepository) List(ctx context.Context, filter models.TadaFilter) ([]models.TadaClaim, int, error) {
	base := "FROM tada_claims t"
	var conditions []string
	var args []interface{}

	if filter.SalesmanID != "" {
		conditions = append(conditions, fmt.Sprintf("t.salesman_id = $%d", len(args)+1))
		args = append(args, filter.SalesmanID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT t.id, t.salesman_id, t.claim_date, t.city, t.travel_mode, t.amount,
        t.has_visit, t.has_specimen_data, t.within_limit, t.status, t.created_at, t.updated_at
        %s ORDER BY t.claim_date DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var claims []models.TadaClaim
	if err := r.db.SelectContext(ctx, &claims, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}
	return claims, total, nil
}
