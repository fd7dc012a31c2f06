package service

import (
	"strings"

	"github.com/vidya-press/field-crm-api/internal/models"
)

// PurposeRule binds a visit purpose to the field it makes mandatory on a
// given step. Rules are injected data, so adding a purpose with its own
// conditional section needs no change to the step machine.
type PurposeRule struct {
	Purpose string
	Step    models.VisitStep
	Field   models.VisitField
}

// DefaultPurposeRules encode the stock purpose-conditional sections.
var DefaultPurposeRules = []PurposeRule{
	{Purpose: models.PurposeJointWorking, Step: models.StepJointWorking, Field: models.FieldManagerRef},
	{Purpose: models.PurposeSpecimenDistribution, Step: models.StepSpecimen, Field: models.FieldGivenLines},
	{Purpose: models.PurposeSalesReturnFollowUp, Step: models.StepSpecimen, Field: models.FieldReturnLines},
	{Purpose: models.PurposePaymentCollection, Step: models.StepFeedback, Field: models.FieldPayment},
}

// RequiredFields computes the required-field set for one step as a pure
// function of the chosen purposes and the entity kind. Presentation decides
// what to show; this decides what blocks forward navigation.
func RequiredFields(step models.VisitStep, kind models.EntityKind, purposes []string, rules []PurposeRule) models.FieldSet {
	fields := models.FieldSet{}

	switch step {
	case models.StepEntity:
		fields[models.FieldEntity] = true
		if kind == models.EntityKindSchool {
			fields[models.FieldSupplyChannel] = true
		}
	case models.StepContact:
		fields[models.FieldContacts] = true
	case models.StepPurpose:
		fields[models.FieldPurposes] = true
	}

	chosen := make(map[string]bool, len(purposes))
	for _, p := range purposes {
		chosen[p] = true
	}
	for _, rule := range rules {
		if rule.Step == step && chosen[rule.Purpose] {
			fields[rule.Field] = true
		}
	}
	return fields
}

// fieldSatisfied reports whether the draft fulfils one required field.
func fieldSatisfied(draft *models.VisitDraft, field models.VisitField) bool {
	switch field {
	case models.FieldEntity:
		return draft.EntityID != ""
	case models.FieldSupplyChannel:
		return strings.TrimSpace(draft.SupplyChannel) != ""
	case models.FieldContacts:
		return len(draft.SelectedContactIDs)+len(draft.NewContacts) > 0
	case models.FieldPurposes:
		return len(draft.Purposes) > 0
	case models.FieldManagerRef:
		return strings.TrimSpace(draft.ManagerRef) != ""
	case models.FieldGivenLines:
		return len(draft.GivenLines) > 0
	case models.FieldReturnLines:
		return len(draft.ReturnedLines) > 0
	case models.FieldPayment:
		return draft.PaymentAmount > 0
	}
	return true
}

// stepIndex returns the position of a step in the wizard order, -1 when
// unknown.
func stepIndex(step models.VisitStep) int {
	for i, s := range models.VisitSteps {
		if s == step {
			return i
		}
	}
	return -1
}
