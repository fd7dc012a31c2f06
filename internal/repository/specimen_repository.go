package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// ErrAllocationExhausted is returned when a guarded decrement affects no row,
// meaning the remaining allocation is smaller than the requested quantity.
var ErrAllocationExhausted = errors.New("allocation exhausted")

// SpecimenRepository reads the specimen catalog and owns the per-salesman
// allocation counters.
type SpecimenRepository struct {
	db *sqlx.DB
}

// NewSpecimenRepository constructs the repository.
func NewSpecimenRepository(db *sqlx.DB) *SpecimenRepository {
	return &SpecimenRepository{db: db}
}

// FindItem returns one catalog item.
func (r *SpecimenRepository) FindItem(ctx context.Context, id string) (*models.SpecimenCatalogItem, error) {
	const query = `SELECT id, subject, class, title, mrp FROM specimen_catalog WHERE id = $1`
	var item models.SpecimenCatalogItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAllocations returns the salesman's catalog items that still have stock.
func (r *SpecimenRepository) ListAllocations(ctx context.Context, salesmanID string) ([]models.SpecimenAllocationDetail, error) {
	const query = `SELECT s.id, s.subject, s.class, s.title, s.mrp, a.remaining
        FROM specimen_allocations a
        JOIN specimen_catalog s ON s.id = a.specimen_id
        WHERE a.salesman_id = $1 AND a.remaining > 0
        ORDER BY s.subject, s.class, s.title`
	var details []models.SpecimenAllocationDetail
	if err := r.db.SelectContext(ctx, &details, query, salesmanID); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return details, nil
}

// Remaining returns the remaining allocation for one item, zero when no
// allocation row exists.
func (r *SpecimenRepository) Remaining(ctx context.Context, specimenID, salesmanID string) (int, error) {
	const query = `SELECT remaining FROM specimen_allocations WHERE specimen_id = $1 AND salesman_id = $2`
	var remaining int
	if err := r.db.GetContext(ctx, &remaining, query, specimenID, salesmanID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("read allocation: %w", err)
	}
	return remaining, nil
}

// Decrement commits a quantity against the allocation. The WHERE guard keeps
// the counter non-negative; zero rows affected surfaces ErrAllocationExhausted.
func (r *SpecimenRepository) Decrement(ctx context.Context, specimenID, salesmanID string, quantity int) error {
	const query = `UPDATE specimen_allocations SET remaining = remaining - $3
        WHERE specimen_id = $1 AND salesman_id = $2 AND remaining >= $3`
	res, err := r.db.ExecContext(ctx, query, specimenID, salesmanID, quantity)
	if err != nil {
		return fmt.Errorf("decrement allocation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement allocation: %w", err)
	}
	if affected == 0 {
		return ErrAllocationExhausted
	}
	return nil
}

// Credit returns a quantity to the allocation.
func (r *SpecimenRepository) Credit(ctx context.Context, specimenID, salesmanID string, quantity int) error {
	const query = `UPDATE specimen_allocations SET remaining = remaining + $3
        WHERE specimen_id = $1 AND salesman_id = $2`
	if _, err := r.db.ExecContext(ctx, query, specimenID, salesmanID, quantity); err != nil {
		return fmt.Errorf("credit allocation: %w", err)
	}
	return nil
}
