package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	"github.com/vidya-press/field-crm-api/pkg/jobs"
)

type reminderStore interface {
	Create(ctx context.Context, reminder *models.VisitReminder) error
	ListDue(ctx context.Context, now time.Time) ([]models.VisitReminder, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
}

type dispatchCounter interface {
	CountReminderDispatched()
}

// ReminderScheduler persists next-visit reminders off the submit path and
// dispatches the due ones on a cron schedule. Dispatch here means marking the
// reminder handled and logging it; delivery channels sit downstream.
type ReminderScheduler struct {
	cron      *cron.Cron
	reminders reminderStore
	metrics   dispatchCounter
	spec      string
	logger    *zap.Logger
}

// NewReminderScheduler creates a scheduler with the given cron spec.
func NewReminderScheduler(reminders reminderStore, metrics dispatchCounter, spec string, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		cron:      cron.New(),
		reminders: reminders,
		metrics:   metrics,
		spec:      spec,
		logger:    logger,
	}
}

// HandleJob is the queue handler that persists a reminder enqueued at visit
// submit time.
func (s *ReminderScheduler) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(service.ReminderPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}
	reminder := &models.VisitReminder{
		VisitID:    payload.VisitID,
		SalesmanID: payload.SalesmanID,
		EntityID:   payload.EntityID,
		RemindAt:   payload.RemindAt,
		Note:       payload.Note,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return fmt.Errorf("persist reminder: %w", err)
	}
	s.logger.Debug("reminder persisted",
		zap.String("visit_id", payload.VisitID),
		zap.Time("remind_at", payload.RemindAt))
	return nil
}

// Start registers the dispatch job and starts the cron loop.
func (s *ReminderScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.dispatchDue); err != nil {
		return fmt.Errorf("schedule reminder dispatch: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the cron loop.
func (s *ReminderScheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) dispatchDue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()
	due, err := s.reminders.ListDue(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due reminders", zap.Error(err))
		return
	}
	for _, reminder := range due {
		if err := s.reminders.MarkDispatched(ctx, reminder.ID, now); err != nil {
			s.logger.Error("failed to mark reminder dispatched",
				zap.String("reminder_id", reminder.ID), zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.CountReminderDispatched()
		}
		s.logger.Info("visit reminder due",
			zap.String("reminder_id", reminder.ID),
			zap.String("salesman_id", reminder.SalesmanID),
			zap.String("entity_id", reminder.EntityID),
			zap.String("note", reminder.Note))
	}
}
