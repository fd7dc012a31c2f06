package models

import "time"

// VisitStep identifies one step of the visit-capture wizard. Steps are a
// fixed linear sequence; ordering lives in VisitSteps.
type VisitStep string

// Wizard steps in order.
const (
	StepEntity       VisitStep = "ENTITY"
	StepContact      VisitStep = "CONTACT"
	StepPurpose      VisitStep = "PURPOSE"
	StepJointWorking VisitStep = "JOINT_WORKING"
	StepSpecimen     VisitStep = "SPECIMEN"
	StepFeedback     VisitStep = "FEEDBACK"
	StepNextVisit    VisitStep = "NEXT_VISIT"
)

// VisitSteps is the wizard order. Forward navigation moves one step at a
// time; backward navigation is unrestricted.
var VisitSteps = []VisitStep{
	StepEntity,
	StepContact,
	StepPurpose,
	StepJointWorking,
	StepSpecimen,
	StepFeedback,
	StepNextVisit,
}

// Default visit purposes. The accepted purpose set is vocabulary-driven; these
// are the ones the step-gating rules reference out of the box.
const (
	PurposeSpecimenDistribution = "Specimen Distribution"
	PurposeSalesReturnFollowUp  = "Sales Return Follow-Up"
	PurposePaymentCollection    = "Payment Collection"
	PurposeJointWorking         = "Joint Working"
	PurposeCourtesy             = "Courtesy Visit"
)

// VisitField names a conditionally-required field of the wizard.
type VisitField string

// Conditionally-required fields referenced by the step-gating rules.
const (
	FieldEntity        VisitField = "entity"
	FieldSupplyChannel VisitField = "supply_channel"
	FieldContacts      VisitField = "contacts"
	FieldPurposes      VisitField = "purposes"
	FieldManagerRef    VisitField = "manager_ref"
	FieldGivenLines    VisitField = "given_lines"
	FieldReturnLines   VisitField = "return_lines"
	FieldPayment       VisitField = "payment"
)

// FieldSet is the required-field set computed for one step.
type FieldSet map[VisitField]bool

// Has reports whether the field is required.
func (fs FieldSet) Has(f VisitField) bool { return fs[f] }

// VisitDraft is the mutable state of one open wizard session. It lives only
// in memory: created on start, mutated step by step, discarded on cancel and
// converted to an immutable Visit on submit.
type VisitDraft struct {
	ID         string     `json:"id"`
	SalesmanID string     `json:"salesman_id"`
	Step       VisitStep  `json:"step"`
	EntityID   string     `json:"entity_id,omitempty"`
	EntityKind EntityKind `json:"entity_kind,omitempty"`

	SupplyChannel string `json:"supply_channel,omitempty"`

	SelectedContactIDs []string     `json:"selected_contact_ids,omitempty"`
	NewContacts        []NewContact `json:"new_contacts,omitempty"`

	Purposes   []string `json:"purposes,omitempty"`
	ManagerRef string   `json:"manager_ref,omitempty"`

	GivenLines    []GivenLine    `json:"given_lines,omitempty"`
	ReturnedLines []ReturnedLine `json:"returned_lines,omitempty"`

	PaymentAmount int64  `json:"payment_amount,omitempty"`
	PaymentMode   string `json:"payment_mode,omitempty"`
	Feedback      string `json:"feedback,omitempty"`

	NextVisitDate *time.Time `json:"next_visit_date,omitempty"`
	NextVisitNote string     `json:"next_visit_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisitStatus is the lifecycle state of a finalized visit.
type VisitStatus string

// Visit statuses.
const (
	VisitStatusLogged VisitStatus = "LOGGED"
)

// VisitContact is one resolved contact frozen onto a visit. ContactID is
// empty for contacts authored during the visit.
type VisitContact struct {
	ContactID string `db:"contact_id" json:"contact_id,omitempty"`
	Name      string `db:"name" json:"name"`
	Role      string `db:"role" json:"role"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Email     string `db:"email" json:"email,omitempty"`
}

// Visit is the immutable record produced at submission. Corrections require a
// new Visit; nothing mutates one after creation.
type Visit struct {
	ID            string         `db:"id" json:"id"`
	SalesmanID    string         `db:"salesman_id" json:"salesman_id"`
	EntityID      string         `db:"entity_id" json:"entity_id"`
	EntityKind    EntityKind     `db:"entity_kind" json:"entity_kind"`
	VisitDate     time.Time      `db:"visit_date" json:"visit_date"`
	SupplyChannel string         `db:"supply_channel" json:"supply_channel,omitempty"`
	Contacts      []VisitContact `db:"-" json:"contacts"`
	Purposes      []string       `db:"-" json:"purposes"`
	ManagerRef    string         `db:"manager_ref" json:"manager_ref,omitempty"`
	GivenLines    []GivenLine    `db:"-" json:"given_lines,omitempty"`
	ReturnedLines []ReturnedLine `db:"-" json:"returned_lines,omitempty"`
	PaymentAmount int64          `db:"payment_amount" json:"payment_amount,omitempty"`
	PaymentMode   string         `db:"payment_mode" json:"payment_mode,omitempty"`
	Feedback      string         `db:"feedback" json:"feedback,omitempty"`
	NextVisitDate *time.Time     `db:"next_visit_date" json:"next_visit_date,omitempty"`
	NextVisitNote string         `db:"next_visit_note" json:"next_visit_note,omitempty"`
	TotalCost     int64          `db:"total_cost" json:"total_cost"`
	Status        VisitStatus    `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// VisitFilter narrows visit listings.
type VisitFilter struct {
	SalesmanID string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// VisitReminder is a scheduled follow-up created when a visit carries
// next-visit fields. Dispatch only marks it due; delivery is external.
type VisitReminder struct {
	ID           string     `db:"id" json:"id"`
	VisitID      string     `db:"visit_id" json:"visit_id"`
	SalesmanID   string     `db:"salesman_id" json:"salesman_id"`
	EntityID     string     `db:"entity_id" json:"entity_id"`
	RemindAt     time.Time  `db:"remind_at" json:"remind_at"`
	Note         string     `db:"note" json:"note,omitempty"`
	Dispatched   bool       `db:"dispatched" json:"dispatched"`
	DispatchedAt *time.Time `db:"dispatched_at" json:"dispatched_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
