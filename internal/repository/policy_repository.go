package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// PolicyRepository reads the expense policy table and the dropdown
// vocabularies. Both are static reference data.
type PolicyRepository struct {
	db *sqlx.DB
}

// NewPolicyRepository constructs the repository.
func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// ListPolicies returns all expense policies.
func (r *PolicyRepository) ListPolicies(ctx context.Context) ([]models.ExpensePolicy, error) {
	const query = `SELECT category, daily_limit, receipt_required, description FROM expense_policies ORDER BY category`
	var policies []models.ExpensePolicy
	if err := r.db.SelectContext(ctx, &policies, query); err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return policies, nil
}

// FindPolicy returns the policy for one category.
func (r *PolicyRepository) FindPolicy(ctx context.Context, category string) (*models.ExpensePolicy, error) {
	const query = `SELECT category, daily_limit, receipt_required, description FROM expense_policies WHERE category = $1`
	var policy models.ExpensePolicy
	if err := r.db.GetContext(ctx, &policy, query, category); err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListVocabulary returns the value set of one vocabulary kind.
func (r *PolicyRepository) ListVocabulary(ctx context.Context, kind models.VocabularyKind) ([]string, error) {
	const query = `SELECT value FROM vocabularies WHERE kind = $1 ORDER BY value`
	var values []string
	if err := r.db.SelectContext(ctx, &values, query, kind); err != nil {
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	return values, nil
}
