package models

import "time"

// TadaStatus is the lifecycle state of a travel claim.
type TadaStatus string

// Claim statuses. A claim is created FLAGGED whenever it exceeds the ceiling;
// a missing visit for the claim date blocks creation outright. Approved claims
// move to PAID at payout.
const (
	TadaStatusPending  TadaStatus = "PENDING"
	TadaStatusFlagged  TadaStatus = "FLAGGED"
	TadaStatusApproved TadaStatus = "APPROVED"
	TadaStatusRejected TadaStatus = "REJECTED"
	TadaStatusPaid     TadaStatus = "PAID"
)

// TadaClaim is a travel-allowance claim with its three derived predicates.
// HasSpecimenData is informational context for the approver; it does not
// participate in the status decision.
type TadaClaim struct {
	ID              string     `db:"id" json:"id"`
	SalesmanID      string     `db:"salesman_id" json:"salesman_id"`
	ClaimDate       time.Time  `db:"claim_date" json:"claim_date"`
	City            string     `db:"city" json:"city"`
	TravelMode      string     `db:"travel_mode" json:"travel_mode"`
	Amount          int64      `db:"amount" json:"amount"`
	HasVisit        bool       `db:"has_visit" json:"has_visit"`
	HasSpecimenData bool       `db:"has_specimen_data" json:"has_specimen_data"`
	WithinLimit     bool       `db:"within_limit" json:"within_limit"`
	Status          TadaStatus `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// TadaFilter narrows claim listings.
type TadaFilter struct {
	SalesmanID string
	Status     TadaStatus
	Page       int
	PageSize   int
}
