package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

func ledgerAllocations() []models.SpecimenAllocationDetail {
	return []models.SpecimenAllocationDetail{
		{
			SpecimenCatalogItem: models.SpecimenCatalogItem{ID: "sp-math-7", Subject: "Mathematics", Class: "7", Title: "Maths Magic 7", MRP: 20000},
			Remaining:           5,
		},
		{
			SpecimenCatalogItem: models.SpecimenCatalogItem{ID: "sp-eng-5", Subject: "English", Class: "5", Title: "Wordsmith 5", MRP: 14500},
			Remaining:           2,
		},
	}
}

func TestSpecimenCost(t *testing.T) {
	// MRP 200.00 x 3 copies: gross 600.00, cost 300.00
	assert.Equal(t, int64(30000), specimenCost(20000, 3))
	// odd gross rounds away from zero: 145.00 -> 72.50 exact, 145.01 x 1 -> 72.51
	assert.Equal(t, int64(7250), specimenCost(14500, 1))
	assert.Equal(t, int64(7251), specimenCost(14501, 1))
	assert.Equal(t, int64(0), specimenCost(0, 10))
}

func TestLedgerAddGivenComputesCost(t *testing.T) {
	ledger := NewSpecimenLedger(ledgerAllocations())

	line, err := ledger.AddGiven("sp-math-7", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), line.Cost)
	assert.Equal(t, "Maths Magic 7", line.Title)
	assert.Equal(t, 2, ledger.Remaining("sp-math-7"))
	assert.Equal(t, int64(30000), ledger.TotalCost())
}

func TestLedgerExactRemainderSucceedsOneMoreFails(t *testing.T) {
	ledger := NewSpecimenLedger(ledgerAllocations())

	_, err := ledger.AddGiven("sp-math-7", 6)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientAllocation))

	_, err = ledger.AddGiven("sp-math-7", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Remaining("sp-math-7"))

	_, err = ledger.AddGiven("sp-math-7", 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientAllocation))
}

func TestLedgerRemoveGivenCreditsReservation(t *testing.T) {
	ledger := NewSpecimenLedger(ledgerAllocations())

	_, err := ledger.AddGiven("sp-eng-5", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Remaining("sp-eng-5"))

	require.NoError(t, ledger.RemoveGiven(0))
	assert.Equal(t, 2, ledger.Remaining("sp-eng-5"))
	assert.Empty(t, ledger.Given())

	// credited quantity is usable again
	_, err = ledger.AddGiven("sp-eng-5", 2)
	require.NoError(t, err)
}

func TestLedgerUnknownSpecimenRejected(t *testing.T) {
	ledger := NewSpecimenLedger(ledgerAllocations())

	_, err := ledger.AddGiven("sp-unknown", 1)
	require.Error(t, err)

	_, err = ledger.AddReturned("sp-unknown", 1, models.SpecimenConditionGood)
	require.Error(t, err)
}

func TestLedgerReturnsRequireCondition(t *testing.T) {
	ledger := NewSpecimenLedger(ledgerAllocations())

	_, err := ledger.AddReturned("sp-math-7", 1, "")
	require.Error(t, err)

	line, err := ledger.AddReturned("sp-math-7", 4, models.SpecimenConditionDamaged)
	require.NoError(t, err)
	assert.Equal(t, models.SpecimenConditionDamaged, line.Condition)
	// returns never touch the allocation
	assert.Equal(t, 5, ledger.Remaining("sp-math-7"))

	require.NoError(t, ledger.RemoveReturned(0))
	assert.Empty(t, ledger.Returned())
}
