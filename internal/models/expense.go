package models

import "time"

// ExpensePolicy is one row of the static expense policy table: a per-category
// daily limit and whether a receipt must accompany the expense at submission.
type ExpensePolicy struct {
	Category        string `db:"category" json:"category"`
	DailyLimit      int64  `db:"daily_limit" json:"daily_limit"`
	ReceiptRequired bool   `db:"receipt_required" json:"receipt_required"`
	Description     string `db:"description" json:"description,omitempty"`
}

// ExpenseStatus is the lifecycle state of a single expense.
type ExpenseStatus string

// Expense statuses. An expense leaves DRAFT only by being grouped into a
// report, after which the salesman cannot touch it.
const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"
	ExpenseStatusSubmitted ExpenseStatus = "SUBMITTED"
)

// Expense is one expense entry. PolicyViolation is advisory: recomputed live
// on every edit, carried to approval display, never blocking.
type Expense struct {
	ID              string        `db:"id" json:"id"`
	SalesmanID      string        `db:"salesman_id" json:"salesman_id"`
	Category        string        `db:"category" json:"category"`
	ExpenseDate     time.Time     `db:"expense_date" json:"expense_date"`
	Amount          int64         `db:"amount" json:"amount"`
	Description     string        `db:"description" json:"description,omitempty"`
	ReceiptRef      string        `db:"receipt_ref" json:"receipt_ref,omitempty"`
	PolicyViolation bool          `db:"policy_violation" json:"policy_violation"`
	ReportID        *string       `db:"report_id" json:"report_id,omitempty"`
	Status          ExpenseStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// ExpenseReportStatus is the report lifecycle state.
type ExpenseReportStatus string

// Report statuses. Valid transitions: PENDING→APPROVED→PAID and
// PENDING→REJECTED only.
const (
	ReportStatusPending  ExpenseReportStatus = "PENDING"
	ReportStatusApproved ExpenseReportStatus = "APPROVED"
	ReportStatusPaid     ExpenseReportStatus = "PAID"
	ReportStatusRejected ExpenseReportStatus = "REJECTED"
)

// ExpenseReport groups submitted expenses for approval. Totals and the
// violation count are derived at creation and frozen with the membership.
type ExpenseReport struct {
	ID             string              `db:"id" json:"id"`
	SalesmanID     string              `db:"salesman_id" json:"salesman_id"`
	Title          string              `db:"title" json:"title"`
	TotalAmount    int64               `db:"total_amount" json:"total_amount"`
	ViolationCount int                 `db:"violation_count" json:"violation_count"`
	DateFrom       time.Time           `db:"date_from" json:"date_from"`
	DateTo         time.Time           `db:"date_to" json:"date_to"`
	Status         ExpenseReportStatus `db:"status" json:"status"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`
	Expenses       []Expense           `db:"-" json:"expenses,omitempty"`
}

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	SalesmanID string
	Category   string
	Status     ExpenseStatus
	Page       int
	PageSize   int
}

// ExpenseReportFilter narrows report listings.
type ExpenseReportFilter struct {
	SalesmanID string
	Status     ExpenseReportStatus
	Page       int
	PageSize   int
}
