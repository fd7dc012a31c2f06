package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type entityReaderStub struct {
	entities map[string]*models.Entity
}

func (s *entityReaderStub) FindByID(ctx context.Context, id string) (*models.Entity, error) {
	if e, ok := s.entities[id]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, errNotFoundStub
}

type allocationReaderStub struct {
	allocations []models.SpecimenAllocationDetail
}

func (s *allocationReaderStub) ListAllocations(ctx context.Context, salesmanID string) ([]models.SpecimenAllocationDetail, error) {
	return s.allocations, nil
}

type vocabStub struct {
	values map[models.VocabularyKind][]string
}

func (s *vocabStub) Vocabulary(ctx context.Context, kind models.VocabularyKind) (models.Vocabulary, error) {
	return models.Vocabulary{Kind: kind, Values: s.values[kind]}, nil
}

type assemblerStub struct {
	visits []*models.VisitDraft
	err    error
}

func (s *assemblerStub) Assemble(ctx context.Context, draft *models.VisitDraft) (*models.Visit, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.visits = append(s.visits, draft)
	return &models.Visit{ID: "v1", SalesmanID: draft.SalesmanID, EntityID: draft.EntityID}, nil
}

var errNotFoundStub = appErrors.Clone(appErrors.ErrNotFound, "not found")

func newFlowFixture() (*VisitFlowService, *assemblerStub) {
	entities := &entityReaderStub{entities: map[string]*models.Entity{
		"e1": {ID: "e1", Kind: models.EntityKindSchool, Name: "St. Xavier's", SalesmanID: "s1"},
		"e2": {ID: "e2", Kind: models.EntityKindBookseller, Name: "City Books", SalesmanID: "s2"},
	}}
	allocations := &allocationReaderStub{allocations: ledgerAllocations()}
	vocab := &vocabStub{values: map[models.VocabularyKind][]string{
		models.VocabularyPurposes: {
			models.PurposeSpecimenDistribution,
			models.PurposeSalesReturnFollowUp,
			models.PurposePaymentCollection,
			models.PurposeJointWorking,
			models.PurposeCourtesy,
		},
	}}
	assembler := &assemblerStub{}
	return NewVisitFlowService(entities, allocations, vocab, assembler, nil, nil, nil), assembler
}

func TestFlowStartAndOwnership(t *testing.T) {
	svc, _ := newFlowFixture()

	draft, err := svc.StartDraft(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepEntity, draft.Step)

	_, err = svc.Draft(draft.ID, "someone-else")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Draft("no-such-draft", "s1")
	require.Error(t, err)
}

func TestFlowRejectsForeignEntity(t *testing.T) {
	svc, _ := newFlowFixture()
	draft, err := svc.StartDraft(context.Background(), "s1")
	require.NoError(t, err)

	_, err = svc.SetEntity(context.Background(), draft.ID, "s1", SetEntityRequest{EntityID: "e2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestFlowNextGuardsRequiredFields(t *testing.T) {
	svc, _ := newFlowFixture()
	ctx := context.Background()
	draft, err := svc.StartDraft(ctx, "s1")
	require.NoError(t, err)

	// entity step: school needs a supply channel too
	_, err = svc.SetEntity(ctx, draft.ID, "s1", SetEntityRequest{EntityID: "e1"})
	require.NoError(t, err)
	_, err = svc.Next(draft.ID, "s1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncompleteSupplyChannel))

	_, err = svc.SetEntity(ctx, draft.ID, "s1", SetEntityRequest{EntityID: "e1", SupplyChannel: "Direct"})
	require.NoError(t, err)
	draft, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepContact, draft.Step)

	// contact step blocks until the union is non-empty
	_, err = svc.Next(draft.ID, "s1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncompleteContact))

	_, err = svc.SetContacts(draft.ID, "s1", SetContactsRequest{
		NewContacts: []models.NewContact{{Name: "Sister Mary", Role: "Principal"}},
	})
	require.NoError(t, err)
	draft, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepPurpose, draft.Step)

	// purpose step blocks until a purpose is chosen
	_, err = svc.Next(draft.ID, "s1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingPurpose))
}

func TestFlowSpecimenGatingForDistributionOnly(t *testing.T) {
	svc, assembler := newFlowFixture()
	ctx := context.Background()
	draft, err := svc.StartDraft(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.SetEntity(ctx, draft.ID, "s1", SetEntityRequest{EntityID: "e1", SupplyChannel: "Via Bookseller"})
	require.NoError(t, err)
	_, err = svc.SetContacts(draft.ID, "s1", SetContactsRequest{
		NewContacts: []models.NewContact{{Name: "R. Gupta", Role: "Coordinator"}},
	})
	require.NoError(t, err)
	_, err = svc.SetPurposes(ctx, draft.ID, "s1", SetPurposesRequest{Purposes: []string{models.PurposeSpecimenDistribution}})
	require.NoError(t, err)

	for _, step := range []models.VisitStep{models.StepContact, models.StepPurpose, models.StepJointWorking} {
		draft, err = svc.Next(draft.ID, "s1")
		require.NoError(t, err)
		assert.Equal(t, step, draft.Step)
	}

	// joint working is not required without the Joint Working purpose
	draft, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepSpecimen, draft.Step)

	// specimen step blocks until a given line exists
	_, err = svc.Next(draft.ID, "s1")
	require.Error(t, err)

	draft, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, draft.GivenLines, 1)
	assert.Equal(t, int64(20000), draft.GivenLines[0].Cost)

	draft, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepFeedback, draft.Step)

	draft, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepNextVisit, draft.Step)

	visit, err := svc.Submit(ctx, draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v1", visit.ID)
	require.Len(t, assembler.visits, 1)

	// session is gone after submit
	_, err = svc.Draft(draft.ID, "s1")
	require.Error(t, err)
}

func TestFlowOverAllocationRejectedInDraft(t *testing.T) {
	svc, _ := newFlowFixture()
	ctx := context.Background()
	draft, err := svc.StartDraft(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 6})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientAllocation))

	// exact remainder in two lines is fine, one more copy is not
	_, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 1})
	require.Error(t, err)

	// removing a line credits the session ledger
	draft, err = svc.RemoveGivenLine(draft.ID, "s1", 1)
	require.NoError(t, err)
	require.Len(t, draft.GivenLines, 1)
	_, err = svc.AddGivenLine(draft.ID, "s1", AddGivenLineRequest{SpecimenID: "sp-math-7", Quantity: 2})
	require.NoError(t, err)
}

func TestFlowBackNeverDiscardsData(t *testing.T) {
	svc, _ := newFlowFixture()
	ctx := context.Background()
	draft, err := svc.StartDraft(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.SetEntity(ctx, draft.ID, "s1", SetEntityRequest{EntityID: "e1", SupplyChannel: "Direct"})
	require.NoError(t, err)
	_, err = svc.Next(draft.ID, "s1")
	require.NoError(t, err)
	_, err = svc.SetContacts(draft.ID, "s1", SetContactsRequest{
		NewContacts: []models.NewContact{{Name: "Sister Mary", Role: "Principal"}},
	})
	require.NoError(t, err)

	draft, err = svc.Back(draft.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepEntity, draft.Step)
	assert.Len(t, draft.NewContacts, 1)
	assert.Equal(t, "Direct", draft.SupplyChannel)

	_, err = svc.Back(draft.ID, "s1")
	require.Error(t, err)
}

func TestFlowUnknownPurposeRejected(t *testing.T) {
	svc, _ := newFlowFixture()
	ctx := context.Background()
	draft, err := svc.StartDraft(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.SetPurposes(ctx, draft.ID, "s1", SetPurposesRequest{Purposes: []string{"Sightseeing"}})
	require.Error(t, err)

	_, err = svc.SetPurposes(ctx, draft.ID, "s1", SetPurposesRequest{Purposes: nil})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingPurpose))
}

func TestFlowCancelDiscardsSession(t *testing.T) {
	svc, _ := newFlowFixture()
	draft, err := svc.StartDraft(context.Background(), "s1")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(draft.ID, "s1"))
	_, err = svc.Draft(draft.ID, "s1")
	require.Error(t, err)
}
