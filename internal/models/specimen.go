package models

// SpecimenCondition records the state of a returned specimen.
type SpecimenCondition string

// Known return conditions. The accepted set is vocabulary-driven; these cover
// the defaults.
const (
	SpecimenConditionGood    SpecimenCondition = "GOOD"
	SpecimenConditionDamaged SpecimenCondition = "DAMAGED"
)

// SpecimenCatalogItem is one sample-book SKU with its retail price. Amounts
// are integer minor units.
type SpecimenCatalogItem struct {
	ID      string `db:"id" json:"id"`
	Subject string `db:"subject" json:"subject"`
	Class   string `db:"class" json:"class"`
	Title   string `db:"title" json:"title"`
	MRP     int64  `db:"mrp" json:"mrp"`
}

// SpecimenAllocation is the remaining allocated quantity of one catalog item
// for one salesman. Never negative.
type SpecimenAllocation struct {
	SpecimenID string `db:"specimen_id" json:"specimen_id"`
	SalesmanID string `db:"salesman_id" json:"salesman_id"`
	Remaining  int    `db:"remaining" json:"remaining"`
}

// SpecimenAllocationDetail joins an allocation with its catalog item for
// listing what a salesman can still hand out.
type SpecimenAllocationDetail struct {
	SpecimenCatalogItem
	Remaining int `db:"remaining" json:"remaining"`
}

// GivenLine is one specimen-given entry on a visit. Cost is fixed at half of
// MRP times quantity.
type GivenLine struct {
	SpecimenID string `db:"specimen_id" json:"specimen_id"`
	Subject    string `db:"subject" json:"subject"`
	Class      string `db:"class" json:"class"`
	Title      string `db:"title" json:"title"`
	Quantity   int    `db:"quantity" json:"quantity"`
	UnitMRP    int64  `db:"unit_mrp" json:"unit_mrp"`
	Cost       int64  `db:"cost" json:"cost"`
}

// ReturnedLine is one specimen-return entry on a visit. Returns do not touch
// the allocation ledger.
type ReturnedLine struct {
	SpecimenID string            `db:"specimen_id" json:"specimen_id"`
	Subject    string            `db:"subject" json:"subject"`
	Class      string            `db:"class" json:"class"`
	Title      string            `db:"title" json:"title"`
	Quantity   int               `db:"quantity" json:"quantity"`
	Condition  SpecimenCondition `db:"condition" json:"condition"`
}
