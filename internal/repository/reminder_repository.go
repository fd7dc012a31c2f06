package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// ReminderRepository persists next-visit reminders.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs the repository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create persists a reminder.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.VisitReminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO visit_reminders (id, visit_id, salesman_id, entity_id, remind_at, note, dispatched, created_at)
        VALUES (:id, :visit_id, :salesman_id, :entity_id, :remind_at, :note, :dispatched, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// ListDue returns undispatched reminders due at or before the given time.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]models.VisitReminder, error) {
	const query = `SELECT id, visit_id, salesman_id, entity_id, remind_at, note, dispatched, dispatched_at, created_at
        FROM visit_reminders WHERE dispatched = FALSE AND remind_at <= $1 ORDER BY remind_at ASC`
	var reminders []models.VisitReminder
	if err := r.db.SelectContext(ctx, &reminders, query, now); err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return reminders, nil
}

// MarkDispatched flags a reminder as handled.
func (r *ReminderRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE visit_reminders SET dispatched = TRUE, dispatched_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark reminder dispatched: %w", err)
	}
	return nil
}
