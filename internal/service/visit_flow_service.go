package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type flowEntityReader interface {
	FindByID(ctx context.Context, id string) (*models.Entity, error)
}

type flowAllocationReader interface {
	ListAllocations(ctx context.Context, salesmanID string) ([]models.SpecimenAllocationDetail, error)
}

type vocabularyReader interface {
	Vocabulary(ctx context.Context, kind models.VocabularyKind) (models.Vocabulary, error)
}

type visitAssembler interface {
	Assemble(ctx context.Context, draft *models.VisitDraft) (*models.Visit, error)
}

// SetEntityRequest selects the visited entity on the first step.
type SetEntityRequest struct {
	EntityID      string `json:"entity_id" validate:"required"`
	SupplyChannel string `json:"supply_channel"`
}

// SetContactsRequest records the contact selection for the visit.
type SetContactsRequest struct {
	SelectedContactIDs []string            `json:"selected_contact_ids"`
	NewContacts        []models.NewContact `json:"new_contacts" validate:"dive"`
}

// SetPurposesRequest records the chosen purposes.
type SetPurposesRequest struct {
	Purposes []string `json:"purposes" validate:"required,min=1"`
}

// SetJointWorkingRequest records the accompanying manager.
type SetJointWorkingRequest struct {
	ManagerRef string `json:"manager_ref"`
}

// AddGivenLineRequest appends a specimen-given line.
type AddGivenLineRequest struct {
	SpecimenID string `json:"specimen_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// AddReturnedLineRequest appends a specimen-return line.
type AddReturnedLineRequest struct {
	SpecimenID string                   `json:"specimen_id" validate:"required"`
	Quantity   int                      `json:"quantity" validate:"required,gt=0"`
	Condition  models.SpecimenCondition `json:"condition" validate:"required"`
}

// SetFeedbackRequest records feedback and payment-collection fields.
type SetFeedbackRequest struct {
	PaymentAmount int64  `json:"payment_amount" validate:"gte=0"`
	PaymentMode   string `json:"payment_mode"`
	Feedback      string `json:"feedback"`
}

// SetNextVisitRequest schedules the follow-up visit.
type SetNextVisitRequest struct {
	NextVisitDate *time.Time `json:"next_visit_date"`
	NextVisitNote string     `json:"next_visit_note"`
}

type draftSession struct {
	draft  *models.VisitDraft
	ledger *SpecimenLedger
}

// VisitFlowService drives the multi-step visit wizard: a linear state machine
// whose forward transitions are guarded by the per-step required-field
// predicate. Drafts live only in memory and are discarded on cancel.
type VisitFlowService struct {
	entities  flowEntityReader
	specimens flowAllocationReader
	vocab     vocabularyReader
	assembler visitAssembler
	rules     []PurposeRule
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*draftSession
}

// NewVisitFlowService constructs the wizard service. Nil rules fall back to
// the stock purpose rules.
func NewVisitFlowService(entities flowEntityReader, specimens flowAllocationReader, vocab vocabularyReader, assembler visitAssembler, rules []PurposeRule, validate *validator.Validate, logger *zap.Logger) *VisitFlowService {
	if rules == nil {
		rules = DefaultPurposeRules
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitFlowService{
		entities:  entities,
		specimens: specimens,
		vocab:     vocab,
		assembler: assembler,
		rules:     rules,
		validator: validate,
		logger:    logger,
		sessions:  make(map[string]*draftSession),
	}
}

// StartDraft opens a new wizard session for the salesman, seeding the
// specimen ledger from the current allocation snapshot.
func (s *VisitFlowService) StartDraft(ctx context.Context, salesmanID string) (*models.VisitDraft, error) {
	allocations, err := s.specimens.ListAllocations(ctx, salesmanID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specimen allocations")
	}

	now := time.Now().UTC()
	draft := &models.VisitDraft{
		ID:         uuid.NewString(),
		SalesmanID: salesmanID,
		Step:       models.StepEntity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.sessions[draft.ID] = &draftSession{draft: draft, ledger: NewSpecimenLedger(allocations)}
	s.mu.Unlock()

	s.logger.Info("visit draft started", zap.String("draft_id", draft.ID), zap.String("salesman_id", salesmanID))
	return snapshotDraft(draft), nil
}

// Draft returns a snapshot of an open draft.
func (s *VisitFlowService) Draft(draftID, salesmanID string) (*models.VisitDraft, error) {
	session, err := s.session(draftID, salesmanID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotDraft(session.draft), nil
}

// RequiredFields exposes the gating predicate for the draft's current step.
func (s *VisitFlowService) RequiredFields(draftID, salesmanID string) (models.FieldSet, error) {
	session, err := s.session(draftID, salesmanID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := session.draft
	return RequiredFields(d.Step, d.EntityKind, d.Purposes, s.rules), nil
}

// SetEntity records the visited entity. The entity must be assigned to the
// acting salesman.
func (s *VisitFlowService) SetEntity(ctx context.Context, draftID, salesmanID string, req SetEntityRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entity selection")
	}
	entity, err := s.entities.FindByID(ctx, req.EntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entity")
	}
	if entity.SalesmanID != salesmanID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "entity is not assigned to this salesman")
	}

	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.EntityID = entity.ID
		session.draft.EntityKind = entity.Kind
		session.draft.SupplyChannel = req.SupplyChannel
		return nil
	})
}

// SetContacts records the selected and newly authored contacts.
func (s *VisitFlowService) SetContacts(draftID, salesmanID string, req SetContactsRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.SelectedContactIDs = append([]string(nil), req.SelectedContactIDs...)
		session.draft.NewContacts = append([]models.NewContact(nil), req.NewContacts...)
		return nil
	})
}

// SetPurposes records the chosen purposes. Each must exist in the purpose
// vocabulary.
func (s *VisitFlowService) SetPurposes(ctx context.Context, draftID, salesmanID string, req SetPurposesRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrMissingPurpose
	}
	vocab, err := s.vocab.Vocabulary(ctx, models.VocabularyPurposes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load purpose vocabulary")
	}
	for _, purpose := range req.Purposes {
		if !vocab.Contains(purpose) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown visit purpose: "+purpose)
		}
	}
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.Purposes = append([]string(nil), req.Purposes...)
		return nil
	})
}

// SetJointWorking records the accompanying manager reference.
func (s *VisitFlowService) SetJointWorking(draftID, salesmanID string, req SetJointWorkingRequest) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.ManagerRef = req.ManagerRef
		return nil
	})
}

// AddGivenLine appends a specimen-given line through the draft's ledger.
func (s *VisitFlowService) AddGivenLine(draftID, salesmanID string, req AddGivenLineRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid specimen line")
	}
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		if _, err := session.ledger.AddGiven(req.SpecimenID, req.Quantity); err != nil {
			return err
		}
		session.draft.GivenLines = session.ledger.Given()
		return nil
	})
}

// AddReturnedLine appends a specimen-return line.
func (s *VisitFlowService) AddReturnedLine(draftID, salesmanID string, req AddReturnedLineRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return line")
	}
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		if _, err := session.ledger.AddReturned(req.SpecimenID, req.Quantity, req.Condition); err != nil {
			return err
		}
		session.draft.ReturnedLines = session.ledger.Returned()
		return nil
	})
}

// RemoveGivenLine removes a given line by index, restoring its reservation.
func (s *VisitFlowService) RemoveGivenLine(draftID, salesmanID string, index int) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		if err := session.ledger.RemoveGiven(index); err != nil {
			return err
		}
		session.draft.GivenLines = session.ledger.Given()
		return nil
	})
}

// RemoveReturnedLine removes a return line by index.
func (s *VisitFlowService) RemoveReturnedLine(draftID, salesmanID string, index int) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		if err := session.ledger.RemoveReturned(index); err != nil {
			return err
		}
		session.draft.ReturnedLines = session.ledger.Returned()
		return nil
	})
}

// SetFeedback records feedback and, when Payment Collection is among the
// purposes, the collected amount.
func (s *VisitFlowService) SetFeedback(draftID, salesmanID string, req SetFeedbackRequest) (*models.VisitDraft, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.PaymentAmount = req.PaymentAmount
		session.draft.PaymentMode = req.PaymentMode
		session.draft.Feedback = req.Feedback
		return nil
	})
}

// SetNextVisit records the follow-up schedule.
func (s *VisitFlowService) SetNextVisit(draftID, salesmanID string, req SetNextVisitRequest) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		session.draft.NextVisitDate = req.NextVisitDate
		session.draft.NextVisitNote = req.NextVisitNote
		return nil
	})
}

// Next advances the wizard one step. It is the only forward transition and
// only fires when the current step's required fields are satisfied.
func (s *VisitFlowService) Next(draftID, salesmanID string) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		d := session.draft
		if err := checkStep(d, d.Step, s.rules); err != nil {
			return err
		}
		idx := stepIndex(d.Step)
		if idx < 0 || idx >= len(models.VisitSteps)-1 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "already on the last step")
		}
		d.Step = models.VisitSteps[idx+1]
		return nil
	})
}

// Back moves one step backwards. Always allowed, never discards data.
func (s *VisitFlowService) Back(draftID, salesmanID string) (*models.VisitDraft, error) {
	return s.mutate(draftID, salesmanID, func(session *draftSession) error {
		idx := stepIndex(session.draft.Step)
		if idx <= 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "already on the first step")
		}
		session.draft.Step = models.VisitSteps[idx-1]
		return nil
	})
}

// Cancel discards the draft entirely.
func (s *VisitFlowService) Cancel(draftID, salesmanID string) error {
	session, err := s.session(draftID, salesmanID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, session.draft.ID)
	s.mu.Unlock()
	s.logger.Info("visit draft cancelled", zap.String("draft_id", draftID))
	return nil
}

// Submit validates every step's predicate and hands the draft to the
// assembler. The session is discarded only after the visit is stored.
func (s *VisitFlowService) Submit(ctx context.Context, draftID, salesmanID string) (*models.Visit, error) {
	session, err := s.session(draftID, salesmanID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	draft := snapshotDraft(session.draft)
	s.mu.RUnlock()

	for _, step := range models.VisitSteps {
		if err := checkStep(draft, step, s.rules); err != nil {
			return nil, err
		}
	}

	visit, err := s.assembler.Assemble(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, draftID)
	s.mu.Unlock()

	return visit, nil
}

func (s *VisitFlowService) session(draftID, salesmanID string) (*draftSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	if session.draft.SalesmanID != salesmanID {
		return nil, appErrors.ErrForbidden
	}
	return session, nil
}

func (s *VisitFlowService) mutate(draftID, salesmanID string, fn func(*draftSession) error) (*models.VisitDraft, error) {
	session, err := s.session(draftID, salesmanID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(session); err != nil {
		return nil, err
	}
	session.draft.UpdatedAt = time.Now().UTC()
	return snapshotDraft(session.draft), nil
}

// checkStep verifies every required field of one step against the draft,
// mapping the first unsatisfied field to its blocking error.
func checkStep(draft *models.VisitDraft, step models.VisitStep, rules []PurposeRule) error {
	fields := RequiredFields(step, draft.EntityKind, draft.Purposes, rules)
	for _, field := range []models.VisitField{
		models.FieldEntity, models.FieldSupplyChannel, models.FieldContacts, models.FieldPurposes,
		models.FieldManagerRef, models.FieldGivenLines, models.FieldReturnLines, models.FieldPayment,
	} {
		if !fields.Has(field) || fieldSatisfied(draft, field) {
			continue
		}
		switch field {
		case models.FieldContacts:
			return appErrors.ErrIncompleteContact
		case models.FieldPurposes:
			return appErrors.ErrMissingPurpose
		case models.FieldSupplyChannel:
			return appErrors.ErrIncompleteSupplyChannel
		default:
			return appErrors.Clone(appErrors.ErrValidation, "required field missing: "+string(field))
		}
	}
	return nil
}

// snapshotDraft deep-copies a draft so callers never alias session state.
func snapshotDraft(d *models.VisitDraft) *models.VisitDraft {
	out := *d
	out.SelectedContactIDs = append([]string(nil), d.SelectedContactIDs...)
	out.NewContacts = append([]models.NewContact(nil), d.NewContacts...)
	out.Purposes = append([]string(nil), d.Purposes...)
	out.GivenLines = append([]models.GivenLine(nil), d.GivenLines...)
	out.ReturnedLines = append([]models.ReturnedLine(nil), d.ReturnedLines...)
	if d.NextVisitDate != nil {
		next := *d.NextVisitDate
		out.NextVisitDate = &next
	}
	return &out
}
