package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	"github.com/vidya-press/field-crm-api/pkg/jobs"
)

type reminderStoreStub struct {
	created    []models.VisitReminder
	due        []models.VisitReminder
	dispatched []string
}

func (s *reminderStoreStub) Create(ctx context.Context, reminder *models.VisitReminder) error {
	reminder.ID = "rem-1"
	s.created = append(s.created, *reminder)
	return nil
}

func (s *reminderStoreStub) ListDue(ctx context.Context, now time.Time) ([]models.VisitReminder, error) {
	return s.due, nil
}

func (s *reminderStoreStub) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	s.dispatched = append(s.dispatched, id)
	return nil
}

type dispatchCounterStub struct {
	count int
}

func (s *dispatchCounterStub) CountReminderDispatched() { s.count++ }

func TestHandleJobPersistsReminder(t *testing.T) {
	store := &reminderStoreStub{}
	sched := NewReminderScheduler(store, nil, "0 7 * * *", nil)

	remindAt := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	err := sched.HandleJob(context.Background(), jobs.Job{
		ID: "job-1",
		Payload: service.ReminderPayload{
			VisitID:    "v1",
			SalesmanID: "s1",
			EntityID:   "e1",
			RemindAt:   remindAt,
			Note:       "follow up on payment",
		},
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, "v1", store.created[0].VisitID)
	assert.Equal(t, remindAt, store.created[0].RemindAt)
}

func TestHandleJobRejectsForeignPayload(t *testing.T) {
	sched := NewReminderScheduler(&reminderStoreStub{}, nil, "0 7 * * *", nil)

	err := sched.HandleJob(context.Background(), jobs.Job{ID: "job-1", Payload: "not a reminder"})
	require.Error(t, err)
}

func TestDispatchDueMarksAndCounts(t *testing.T) {
	store := &reminderStoreStub{due: []models.VisitReminder{
		{ID: "rem-1", SalesmanID: "s1", EntityID: "e1"},
		{ID: "rem-2", SalesmanID: "s1", EntityID: "e2"},
	}}
	counter := &dispatchCounterStub{}
	sched := NewReminderScheduler(store, counter, "0 7 * * *", nil)

	sched.dispatchDue()
	assert.Equal(t, []string{"rem-1", "rem-2"}, store.dispatched)
	assert.Equal(t, 2, counter.count)
}
