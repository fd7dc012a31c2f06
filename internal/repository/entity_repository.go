package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// EntityRepository reads the school/bookseller/QB-contact catalog. The engine
// never writes entities; they are reference data maintained elsewhere.
type EntityRepository struct {
	db *sqlx.DB
}

// NewEntityRepository constructs the repository.
func NewEntityRepository(db *sqlx.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// List returns entities filtered by the provided criteria.
func (r *EntityRepository) List(ctx context.Context, filter models.EntityFilter) ([]models.Entity, int, error) {
	base := "FROM entities e"
	var conditions []string
	var args []interface{}

	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("e.kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("e.city = $%d", len(args)+1))
		args = append(args, filter.City)
	}
	if filter.SalesmanID != "" {
		conditions = append(conditions, fmt.Sprintf("e.salesman_id = $%d", len(args)+1))
		args = append(args, filter.SalesmanID)
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

	query := fmt.Sprintf(`SELECT e.id, e.kind, e.name, e.city, e.salesman_id, e.flagged, e.created_at
        %s ORDER BY e.name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var entities []models.Entity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list entities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entities: %w", err)
	}
	return entities, total, nil
}

// FindByID returns an entity with its permanent contact list.
func (r *EntityRepository) FindByID(ctx context.Context, id string) (*models.Entity, error) {
	const query = `SELECT id, kind, name, city, salesman_id, flagged, created_at FROM entities WHERE id = $1`
	var entity models.Entity
	if err := r.db.GetContext(ctx, &entity, query, id); err != nil {
		return nil, err
	}
	contacts, err := r.FindContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	entity.Contacts = contacts
	return &entity, nil
}

// FindContacts returns the entity's permanent contact list.
func (r *EntityRepository) FindContacts(ctx context.Context, entityID string) ([]models.Contact, error) {
	const query = `SELECT id, entity_id, name, role, phone, email FROM entity_contacts WHERE entity_id = $1 ORDER BY name ASC`
	var contacts []models.Contact
	if err := r.db.SelectContext(ctx, &contacts, query, entityID); err != nil {
		return nil, fmt.Errorf("list entity contacts: %w", err)
	}
	return contacts, nil
}
