package models

import "time"

// EntityKind distinguishes the three visitable account categories.
type EntityKind string

// Visitable entity kinds.
const (
	EntityKindSchool     EntityKind = "SCHOOL"
	EntityKindBookseller EntityKind = "BOOKSELLER"
	EntityKindQBContact  EntityKind = "QB_CONTACT"
)

// Entity is a visitable account (school, bookseller or question-bank contact)
// assigned to a salesman. Its contact list is persistent state, distinct from
// the ad-hoc contacts captured for a single visit.
type Entity struct {
	ID         string     `db:"id" json:"id"`
	Kind       EntityKind `db:"kind" json:"kind"`
	Name       string     `db:"name" json:"name"`
	City       string     `db:"city" json:"city"`
	SalesmanID string     `db:"salesman_id" json:"salesman_id"`
	Flagged    bool       `db:"flagged" json:"flagged"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	Contacts   []Contact  `db:"-" json:"contacts,omitempty"`
}

// Contact is a person attached to an entity's permanent contact list.
type Contact struct {
	ID       string `db:"id" json:"id"`
	EntityID string `db:"entity_id" json:"entity_id"`
	Name     string `db:"name" json:"name"`
	Role     string `db:"role" json:"role"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	Email    string `db:"email" json:"email,omitempty"`
}

// NewContact is an ad-hoc contact authored during a visit. It stays
// visit-scoped; folding it back into the entity is the caller's concern.
type NewContact struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// EntityFilter narrows entity listings.
type EntityFilter struct {
	Kind       EntityKind
	City       string
	SalesmanID string
	Page       int
	PageSize   int
}
