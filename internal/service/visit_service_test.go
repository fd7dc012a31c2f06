package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/repository"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/jobs"
)

type visitStoreStub struct {
	visits []*models.Visit
	err    error
}

func (s *visitStoreStub) Create(ctx context.Context, visit *models.Visit) error {
	if s.err != nil {
		return s.err
	}
	visit.ID = "v1"
	s.visits = append(s.visits, visit)
	return nil
}

func (s *visitStoreStub) FindByID(ctx context.Context, id string) (*models.Visit, error) {
	for _, v := range s.visits {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errNotFoundStub
}

func (s *visitStoreStub) List(ctx context.Context, filter models.VisitFilter) ([]models.Visit, int, error) {
	out := make([]models.Visit, 0, len(s.visits))
	for _, v := range s.visits {
		out = append(out, *v)
	}
	return out, len(out), nil
}

type allocationCommitterStub struct {
	remaining  map[string]int
	decrements map[string]int
	credits    map[string]int
}

func newAllocationCommitterStub(remaining map[string]int) *allocationCommitterStub {
	return &allocationCommitterStub{
		remaining:  remaining,
		decrements: map[string]int{},
		credits:    map[string]int{},
	}
}

func (s *allocationCommitterStub) Decrement(ctx context.Context, specimenID, salesmanID string, quantity int) error {
	if s.remaining[specimenID] < quantity {
		return repository.ErrAllocationExhausted
	}
	s.remaining[specimenID] -= quantity
	s.decrements[specimenID] += quantity
	return nil
}

func (s *allocationCommitterStub) Credit(ctx context.Context, specimenID, salesmanID string, quantity int) error {
	s.remaining[specimenID] += quantity
	s.credits[specimenID] += quantity
	return nil
}

type reminderQueueStub struct {
	jobs []jobs.Job
	err  error
}

func (s *reminderQueueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func assemblerEntities() *entityReaderStub {
	return &entityReaderStub{entities: map[string]*models.Entity{
		"e1": {
			ID: "e1", Kind: models.EntityKindSchool, Name: "St. Xavier's", SalesmanID: "s1",
			Contacts: []models.Contact{{ID: "c1", EntityID: "e1", Name: "Sister Mary", Role: "Principal"}},
		},
	}}
}

func completedDraft() *models.VisitDraft {
	return &models.VisitDraft{
		ID:                 "d1",
		SalesmanID:         "s1",
		EntityID:           "e1",
		EntityKind:         models.EntityKindSchool,
		SupplyChannel:      "Direct",
		SelectedContactIDs: []string{"c1"},
		Purposes:           []string{models.PurposeSpecimenDistribution},
		GivenLines: []models.GivenLine{
			{SpecimenID: "sp-math-7", Title: "Maths Magic 7", Quantity: 2, UnitMRP: 20000, Cost: 20000},
			{SpecimenID: "sp-math-7", Title: "Maths Magic 7", Quantity: 1, UnitMRP: 20000, Cost: 10000},
		},
	}
}

func TestAssembleCommitsAndTotals(t *testing.T) {
	store := &visitStoreStub{}
	alloc := newAllocationCommitterStub(map[string]int{"sp-math-7": 5})
	queue := &reminderQueueStub{}
	svc := NewVisitService(store, assemblerEntities(), alloc, queue, nil, true, nil)

	visit, err := svc.Assemble(context.Background(), completedDraft())
	require.NoError(t, err)
	assert.Equal(t, "v1", visit.ID)
	assert.Equal(t, int64(30000), visit.TotalCost)
	assert.Equal(t, models.VisitStatusLogged, visit.Status)
	require.Len(t, visit.Contacts, 1)
	assert.Equal(t, "Sister Mary", visit.Contacts[0].Name)

	// lines for the same specimen commit as one aggregated decrement
	assert.Equal(t, 3, alloc.decrements["sp-math-7"])
	assert.Equal(t, 2, alloc.remaining["sp-math-7"])

	// no next-visit date, no reminder
	assert.Empty(t, queue.jobs)
}

func TestAssembleRequiresContactRegardlessOfOtherFields(t *testing.T) {
	svc := NewVisitService(&visitStoreStub{}, assemblerEntities(), newAllocationCommitterStub(nil), nil, nil, true, nil)

	draft := completedDraft()
	draft.SelectedContactIDs = nil
	draft.NewContacts = nil

	_, err := svc.Assemble(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncompleteContact))
}

func TestAssembleRequiresPurposeAndSupplyChannel(t *testing.T) {
	svc := NewVisitService(&visitStoreStub{}, assemblerEntities(), newAllocationCommitterStub(nil), nil, nil, true, nil)

	draft := completedDraft()
	draft.Purposes = nil
	_, err := svc.Assemble(context.Background(), draft)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingPurpose))

	draft = completedDraft()
	draft.SupplyChannel = " "
	_, err = svc.Assemble(context.Background(), draft)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncompleteSupplyChannel))
}

func TestAssembleExhaustedAllocationBlocks(t *testing.T) {
	store := &visitStoreStub{}
	alloc := newAllocationCommitterStub(map[string]int{"sp-math-7": 2})
	svc := NewVisitService(store, assemblerEntities(), alloc, nil, nil, true, nil)

	_, err := svc.Assemble(context.Background(), completedDraft())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientAllocation))
	assert.Empty(t, store.visits)
	assert.Equal(t, 2, alloc.remaining["sp-math-7"])
}

func TestAssembleRollsBackAllocationOnStoreFailure(t *testing.T) {
	store := &visitStoreStub{err: errors.New("db down")}
	alloc := newAllocationCommitterStub(map[string]int{"sp-math-7": 5})
	svc := NewVisitService(store, assemblerEntities(), alloc, nil, nil, true, nil)

	_, err := svc.Assemble(context.Background(), completedDraft())
	require.Error(t, err)
	assert.Equal(t, 3, alloc.credits["sp-math-7"])
	assert.Equal(t, 5, alloc.remaining["sp-math-7"])
}

func TestAssembleLedgerDisabledSkipsCommit(t *testing.T) {
	store := &visitStoreStub{}
	alloc := newAllocationCommitterStub(map[string]int{"sp-math-7": 1})
	svc := NewVisitService(store, assemblerEntities(), alloc, nil, nil, false, nil)

	visit, err := svc.Assemble(context.Background(), completedDraft())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), visit.TotalCost)
	assert.Empty(t, alloc.decrements)
}

func TestAssembleSchedulesReminder(t *testing.T) {
	store := &visitStoreStub{}
	queue := &reminderQueueStub{}
	svc := NewVisitService(store, assemblerEntities(), newAllocationCommitterStub(map[string]int{"sp-math-7": 5}), queue, nil, true, nil)

	next := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	draft := completedDraft()
	draft.NextVisitDate = &next
	draft.NextVisitNote = "carry class 8 samples"

	visit, err := svc.Assemble(context.Background(), draft)
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	payload, ok := queue.jobs[0].Payload.(ReminderPayload)
	require.True(t, ok)
	assert.Equal(t, visit.ID, payload.VisitID)
	assert.Equal(t, next, payload.RemindAt)
	assert.Equal(t, "carry class 8 samples", payload.Note)
}

func TestAssembleReminderFailureIsNonFatal(t *testing.T) {
	store := &visitStoreStub{}
	queue := &reminderQueueStub{err: errors.New("queue stopped")}
	svc := NewVisitService(store, assemblerEntities(), newAllocationCommitterStub(map[string]int{"sp-math-7": 5}), queue, nil, true, nil)

	next := time.Now().UTC().Add(72 * time.Hour)
	draft := completedDraft()
	draft.NextVisitDate = &next

	_, err := svc.Assemble(context.Background(), draft)
	require.NoError(t, err)
	require.Len(t, store.visits, 1)
}
