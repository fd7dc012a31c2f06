package service

import (
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// specimenCost computes the fixed half-of-MRP price of a given line in
// integer minor units, rounding ties away from zero.
func specimenCost(unitMRP int64, quantity int) int64 {
	gross := unitMRP * int64(quantity)
	cost := gross / 2
	if gross%2 != 0 {
		if gross > 0 {
			cost++
		} else {
			cost--
		}
	}
	return cost
}

// SpecimenLedger tracks specimens given and returned within one open visit
// draft. Given lines reserve quantity against a snapshot of the salesman's
// remaining allocation; returns are independent of the allocation by design.
// The ledger is session-local: the decrement is committed against the store
// only when the visit is assembled.
type SpecimenLedger struct {
	catalog   map[string]models.SpecimenCatalogItem
	remaining map[string]int

	given    []models.GivenLine
	returned []models.ReturnedLine
}

// NewSpecimenLedger seeds a ledger from the salesman's allocation snapshot.
func NewSpecimenLedger(allocations []models.SpecimenAllocationDetail) *SpecimenLedger {
	catalog := make(map[string]models.SpecimenCatalogItem, len(allocations))
	remaining := make(map[string]int, len(allocations))
	for _, a := range allocations {
		catalog[a.ID] = a.SpecimenCatalogItem
		remaining[a.ID] = a.Remaining
	}
	return &SpecimenLedger{catalog: catalog, remaining: remaining}
}

// AddGiven appends a specimen-given line, reserving quantity against the
// remaining allocation. Requesting exactly the remainder succeeds; one more
// fails.
func (l *SpecimenLedger) AddGiven(specimenID string, quantity int) (*models.GivenLine, error) {
	if quantity <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quantity must be positive")
	}
	item, ok := l.catalog[specimenID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "specimen not in catalog")
	}
	if quantity > l.remaining[specimenID] {
		return nil, appErrors.ErrInsufficientAllocation
	}
	line := models.GivenLine{
		SpecimenID: specimenID,
		Subject:    item.Subject,
		Class:      item.Class,
		Title:      item.Title,
		Quantity:   quantity,
		UnitMRP:    item.MRP,
		Cost:       specimenCost(item.MRP, quantity),
	}
	l.remaining[specimenID] -= quantity
	l.given = append(l.given, line)
	return &line, nil
}

// AddReturned appends a specimen-return line. Condition is mandatory.
func (l *SpecimenLedger) AddReturned(specimenID string, quantity int, condition models.SpecimenCondition) (*models.ReturnedLine, error) {
	if quantity <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quantity must be positive")
	}
	if condition == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "return condition is required")
	}
	item, ok := l.catalog[specimenID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "specimen not in catalog")
	}
	line := models.ReturnedLine{
		SpecimenID: specimenID,
		Subject:    item.Subject,
		Class:      item.Class,
		Title:      item.Title,
		Quantity:   quantity,
		Condition:  condition,
	}
	l.returned = append(l.returned, line)
	return &line, nil
}

// RemoveGiven removes a given line by index, crediting its reservation back
// exactly.
func (l *SpecimenLedger) RemoveGiven(index int) error {
	if index < 0 || index >= len(l.given) {
		return appErrors.Clone(appErrors.ErrValidation, "no such specimen line")
	}
	line := l.given[index]
	l.remaining[line.SpecimenID] += line.Quantity
	l.given = append(l.given[:index], l.given[index+1:]...)
	return nil
}

// RemoveReturned removes a return line by index.
func (l *SpecimenLedger) RemoveReturned(index int) error {
	if index < 0 || index >= len(l.returned) {
		return appErrors.Clone(appErrors.ErrValidation, "no such return line")
	}
	l.returned = append(l.returned[:index], l.returned[index+1:]...)
	return nil
}

// Given returns a copy of the given lines.
func (l *SpecimenLedger) Given() []models.GivenLine {
	out := make([]models.GivenLine, len(l.given))
	copy(out, l.given)
	return out
}

// Returned returns a copy of the return lines.
func (l *SpecimenLedger) Returned() []models.ReturnedLine {
	out := make([]models.ReturnedLine, len(l.returned))
	copy(out, l.returned)
	return out
}

// Remaining reports the in-session remainder for one specimen.
func (l *SpecimenLedger) Remaining(specimenID string) int {
	return l.remaining[specimenID]
}

// TotalCost sums the cost of all given lines.
func (l *SpecimenLedger) TotalCost() int64 {
	var total int64
	for _, line := range l.given {
		total += line.Cost
	}
	return total
}
