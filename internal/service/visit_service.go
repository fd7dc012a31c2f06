package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/repository"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/jobs"
)

type visitStore interface {
	Create(ctx context.Context, visit *models.Visit) error
	FindByID(ctx context.Context, id string) (*models.Visit, error)
	List(ctx context.Context, filter models.VisitFilter) ([]models.Visit, int, error)
}

type allocationCommitter interface {
	Decrement(ctx context.Context, specimenID, salesmanID string, quantity int) error
	Credit(ctx context.Context, specimenID, salesmanID string, quantity int) error
}

type reminderEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReminderPayload is carried on the reminder queue from assembly to the
// persistence worker.
type ReminderPayload struct {
	VisitID    string
	SalesmanID string
	EntityID   string
	RemindAt   time.Time
	Note       string
}

// VisitService is the record assembler: it turns a completed draft into one
// immutable Visit, committing the specimen allocation decrement and kicking
// off the next-visit reminder.
type VisitService struct {
	visits        visitStore
	entities      flowEntityReader
	allocations   allocationCommitter
	reminders     reminderEnqueuer
	metrics       *MetricsService
	ledgerEnabled bool
	logger        *zap.Logger

	// one commit at a time per salesman; two devices of the same salesman
	// must not oversubscribe the allocation
	commitMu sync.Mutex
	perSales map[string]*sync.Mutex
}

// NewVisitService constructs the assembler.
func NewVisitService(visits visitStore, entities flowEntityReader, allocations allocationCommitter, reminders reminderEnqueuer, metrics *MetricsService, ledgerEnabled bool, logger *zap.Logger) *VisitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitService{
		visits:        visits,
		entities:      entities,
		allocations:   allocations,
		reminders:     reminders,
		metrics:       metrics,
		ledgerEnabled: ledgerEnabled,
		logger:        logger,
		perSales:      make(map[string]*sync.Mutex),
	}
}

// Assemble validates the draft and produces the immutable Visit. All draft
// fields are deep-copied; nothing aliases back to the session.
func (s *VisitService) Assemble(ctx context.Context, draft *models.VisitDraft) (*models.Visit, error) {
	if len(draft.Purposes) == 0 {
		return nil, appErrors.ErrMissingPurpose
	}
	if draft.EntityID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no entity selected")
	}
	if draft.EntityKind == models.EntityKindSchool && strings.TrimSpace(draft.SupplyChannel) == "" {
		return nil, appErrors.ErrIncompleteSupplyChannel
	}

	entity, err := s.entities.FindByID(ctx, draft.EntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "entity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entity")
	}

	contacts, err := ResolveContacts(entity.Contacts, draft.SelectedContactIDs, draft.NewContacts)
	if err != nil {
		return nil, err
	}

	var totalCost int64
	for _, line := range draft.GivenLines {
		totalCost += line.Cost
	}

	now := time.Now().UTC()
	visit := &models.Visit{
		SalesmanID:    draft.SalesmanID,
		EntityID:      draft.EntityID,
		EntityKind:    draft.EntityKind,
		VisitDate:     now,
		SupplyChannel: draft.SupplyChannel,
		Contacts:      contacts,
		Purposes:      append([]string(nil), draft.Purposes...),
		ManagerRef:    draft.ManagerRef,
		GivenLines:    append([]models.GivenLine(nil), draft.GivenLines...),
		ReturnedLines: append([]models.ReturnedLine(nil), draft.ReturnedLines...),
		PaymentAmount: draft.PaymentAmount,
		PaymentMode:   draft.PaymentMode,
		Feedback:      draft.Feedback,
		NextVisitNote: draft.NextVisitNote,
		TotalCost:     totalCost,
		Status:        models.VisitStatusLogged,
		CreatedAt:     now,
	}
	if draft.NextVisitDate != nil {
		next := *draft.NextVisitDate
		visit.NextVisitDate = &next
	}

	committed, err := s.commitAllocation(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := s.visits.Create(ctx, visit); err != nil {
		s.rollbackAllocation(ctx, draft.SalesmanID, committed)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store visit")
	}

	if s.metrics != nil {
		s.metrics.CountVisitAssembled()
	}
	s.scheduleReminder(visit)

	s.logger.Info("visit assembled",
		zap.String("visit_id", visit.ID),
		zap.String("salesman_id", visit.SalesmanID),
		zap.String("entity_id", visit.EntityID),
		zap.Int64("total_cost", visit.TotalCost),
	)
	return visit, nil
}

// Get returns a stored visit.
func (s *VisitService) Get(ctx context.Context, id string) (*models.Visit, error) {
	visit, err := s.visits.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "visit not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load visit")
	}
	return visit, nil
}

// List returns visits with pagination metadata.
func (s *VisitService) List(ctx context.Context, filter models.VisitFilter) ([]models.Visit, *models.Pagination, error) {
	visits, total, err := s.visits.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list visits")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return visits, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// commitAllocation decrements the allocation for every given line, keyed by
// specimen. On exhaustion it credits back what was already taken and reports
// the blocking error.
func (s *VisitService) commitAllocation(ctx context.Context, draft *models.VisitDraft) (map[string]int, error) {
	committed := make(map[string]int)
	if !s.ledgerEnabled || len(draft.GivenLines) == 0 {
		return committed, nil
	}

	mu := s.salesmanMutex(draft.SalesmanID)
	mu.Lock()
	defer mu.Unlock()

	quantities := make(map[string]int)
	for _, line := range draft.GivenLines {
		quantities[line.SpecimenID] += line.Quantity
	}

	for specimenID, quantity := range quantities {
		if err := s.allocations.Decrement(ctx, specimenID, draft.SalesmanID, quantity); err != nil {
			s.rollbackAllocation(ctx, draft.SalesmanID, committed)
			if errors.Is(err, repository.ErrAllocationExhausted) {
				if s.metrics != nil {
					s.metrics.CountAllocationRejected()
				}
				return nil, appErrors.ErrInsufficientAllocation
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit allocation")
		}
		committed[specimenID] = quantity
	}
	return committed, nil
}

func (s *VisitService) rollbackAllocation(ctx context.Context, salesmanID string, committed map[string]int) {
	for specimenID, quantity := range committed {
		if err := s.allocations.Credit(ctx, specimenID, salesmanID, quantity); err != nil {
			s.logger.Error("failed to credit allocation back",
				zap.String("specimen_id", specimenID),
				zap.String("salesman_id", salesmanID),
				zap.Int("quantity", quantity),
				zap.Error(err),
			)
		}
	}
}

func (s *VisitService) scheduleReminder(visit *models.Visit) {
	if s.reminders == nil || visit.NextVisitDate == nil {
		return
	}
	job := jobs.Job{
		ID:   visit.ID,
		Type: "visit_reminder",
		Payload: ReminderPayload{
			VisitID:    visit.ID,
			SalesmanID: visit.SalesmanID,
			EntityID:   visit.EntityID,
			RemindAt:   *visit.NextVisitDate,
			Note:       visit.NextVisitNote,
		},
	}
	if err := s.reminders.Enqueue(job); err != nil {
		// the visit is already stored; a lost reminder is logged, not fatal
		s.logger.Warn("failed to enqueue visit reminder", zap.String("visit_id", visit.ID), zap.Error(err))
	}
}

func (s *VisitService) salesmanMutex(salesmanID string) *sync.Mutex {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	mu, ok := s.perSales[salesmanID]
	if !ok {
		mu = &sync.Mutex{}
		s.perSales[salesmanID] = mu
	}
	return mu
}
