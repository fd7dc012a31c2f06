package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
)

type referenceReaderStub struct {
	vocabularies map[models.VocabularyKind][]string
	policies     []models.ExpensePolicy
	vocabCalls   int
	policyCalls  int
}

func (s *referenceReaderStub) ListPolicies(ctx context.Context) ([]models.ExpensePolicy, error) {
	s.policyCalls++
	return s.policies, nil
}

func (s *referenceReaderStub) ListVocabulary(ctx context.Context, kind models.VocabularyKind) ([]string, error) {
	s.vocabCalls++
	return s.vocabularies[kind], nil
}

type entityListerStub struct {
	entities []models.Entity
	contacts map[string][]models.Contact
}

func (s *entityListerStub) List(ctx context.Context, filter models.EntityFilter) ([]models.Entity, int, error) {
	return s.entities, len(s.entities), nil
}

func (s *entityListerStub) FindContacts(ctx context.Context, entityID string) ([]models.Contact, error) {
	return s.contacts[entityID], nil
}

func referenceFixture() (*ReferenceService, *referenceReaderStub) {
	reader := &referenceReaderStub{
		vocabularies: map[models.VocabularyKind][]string{
			models.VocabularyTravelModes: {"BUS", "TRAIN"},
		},
		policies: []models.ExpensePolicy{
			{Category: "MEALS", DailyLimit: 50000},
		},
	}
	entities := &entityListerStub{
		entities: []models.Entity{{ID: "e1", Name: "St. Mary School", Kind: models.EntityKindSchool}},
		contacts: map[string][]models.Contact{"e1": {{ID: "c1", EntityID: "e1", Name: "Sister Mary"}}},
	}
	allocations := &allocationReaderStub{allocations: []models.SpecimenAllocationDetail{
		{SpecimenCatalogItem: models.SpecimenCatalogItem{ID: "sp-math-7", MRP: 20000}, Remaining: 5},
	}}
	return NewReferenceService(reader, entities, allocations, nil, nil, time.Minute, nil), reader
}

func TestReferenceVocabularyWithoutCache(t *testing.T) {
	svc, reader := referenceFixture()
	ctx := context.Background()

	vocab, err := svc.Vocabulary(ctx, models.VocabularyTravelModes)
	require.NoError(t, err)
	assert.Equal(t, models.VocabularyTravelModes, vocab.Kind)
	assert.True(t, vocab.Contains("BUS"))
	assert.False(t, vocab.Contains("TELEPORT"))

	// no cache client, every read hits the reader
	_, err = svc.Vocabulary(ctx, models.VocabularyTravelModes)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.vocabCalls)
}

func TestReferencePoliciesWithoutCache(t *testing.T) {
	svc, reader := referenceFixture()

	policies, err := svc.Policies(context.Background())
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "MEALS", policies[0].Category)
	assert.Equal(t, 1, reader.policyCalls)
}

func TestReferenceLiveReads(t *testing.T) {
	svc, _ := referenceFixture()
	ctx := context.Background()

	entities, page, err := svc.Entities(ctx, models.EntityFilter{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, 1, page.TotalCount)

	contacts, err := svc.Contacts(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Sister Mary", contacts[0].Name)

	allocations, err := svc.Allocations(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, 5, allocations[0].Remaining)
}
