package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidya-press/field-crm-api/internal/models"
)

func TestRequiredFieldsEntityStep(t *testing.T) {
	fields := RequiredFields(models.StepEntity, models.EntityKindBookseller, nil, DefaultPurposeRules)
	assert.True(t, fields.Has(models.FieldEntity))
	assert.False(t, fields.Has(models.FieldSupplyChannel))

	// supply channel only for school visits
	fields = RequiredFields(models.StepEntity, models.EntityKindSchool, nil, DefaultPurposeRules)
	assert.True(t, fields.Has(models.FieldSupplyChannel))
}

func TestRequiredFieldsFollowPurposes(t *testing.T) {
	purposes := []string{models.PurposeSpecimenDistribution}

	fields := RequiredFields(models.StepSpecimen, models.EntityKindSchool, purposes, DefaultPurposeRules)
	assert.True(t, fields.Has(models.FieldGivenLines))
	assert.False(t, fields.Has(models.FieldReturnLines))

	fields = RequiredFields(models.StepSpecimen, models.EntityKindSchool, []string{models.PurposeCourtesy}, DefaultPurposeRules)
	assert.False(t, fields.Has(models.FieldGivenLines))

	fields = RequiredFields(models.StepFeedback, models.EntityKindSchool, []string{models.PurposePaymentCollection}, DefaultPurposeRules)
	assert.True(t, fields.Has(models.FieldPayment))

	fields = RequiredFields(models.StepJointWorking, models.EntityKindSchool, []string{models.PurposeJointWorking}, DefaultPurposeRules)
	assert.True(t, fields.Has(models.FieldManagerRef))
}

func TestRequiredFieldsCustomRuleInjection(t *testing.T) {
	rules := append([]PurposeRule(nil), DefaultPurposeRules...)
	rules = append(rules, PurposeRule{Purpose: "Library Audit", Step: models.StepSpecimen, Field: models.FieldReturnLines})

	fields := RequiredFields(models.StepSpecimen, models.EntityKindSchool, []string{"Library Audit"}, rules)
	assert.True(t, fields.Has(models.FieldReturnLines))
}

func TestFieldSatisfied(t *testing.T) {
	draft := &models.VisitDraft{}
	assert.False(t, fieldSatisfied(draft, models.FieldContacts))
	assert.False(t, fieldSatisfied(draft, models.FieldPayment))

	draft.NewContacts = []models.NewContact{{Name: "A", Role: "Principal"}}
	draft.PaymentAmount = 5000
	draft.ManagerRef = "  "
	assert.True(t, fieldSatisfied(draft, models.FieldContacts))
	assert.True(t, fieldSatisfied(draft, models.FieldPayment))
	assert.False(t, fieldSatisfied(draft, models.FieldManagerRef))
}
