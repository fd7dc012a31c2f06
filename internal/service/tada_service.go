package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type tadaStore interface {
	Create(ctx context.Context, claim *models.TadaClaim) error
	FindByID(ctx context.Context, id string) (*models.TadaClaim, error)
	UpdateStatus(ctx context.Context, id string, status models.TadaStatus) error
	List(ctx context.Context, filter models.TadaFilter) ([]models.TadaClaim, int, error)
}

type visitEvidenceReader interface {
	ExistsForSalesmanOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error)
	HasSpecimenDataOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error)
}

// CreateClaimRequest describes a new TA/DA claim.
type CreateClaimRequest struct {
	ClaimDate  time.Time `json:"claim_date" validate:"required"`
	City       string    `json:"city" validate:"required"`
	TravelMode string    `json:"travel_mode" validate:"required"`
	Amount     int64     `json:"amount" validate:"required,gt=0"`
}

// TadaService validates travel claims against logged field activity.
type TadaService struct {
	claims       tadaStore
	visits       visitEvidenceReader
	vocabularies vocabularyReader
	metrics      *MetricsService
	claimCeiling int64
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTadaService constructs TadaService. claimCeiling is the flat per-claim
// amount above which claims are flagged for review.
func NewTadaService(claims tadaStore, visits visitEvidenceReader, vocabularies vocabularyReader, metrics *MetricsService, claimCeiling int64, validate *validator.Validate, logger *zap.Logger) *TadaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TadaService{
		claims:       claims,
		visits:       visits,
		vocabularies: vocabularies,
		metrics:      metrics,
		claimCeiling: claimCeiling,
		validator:    validate,
		logger:       logger,
	}
}

// CreateClaim derives the claim predicates and persists the claim. A claim
// with no logged visit on its date is rejected outright. An over-ceiling
// claim is stored FLAGGED; missing specimen data is recorded for the approver
// but changes nothing.
func (s *TadaService) CreateClaim(ctx context.Context, salesmanID string, req CreateClaimRequest) (*models.TadaClaim, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim payload")
	}
	if s.vocabularies != nil {
		modes, err := s.vocabularies.Vocabulary(ctx, models.VocabularyTravelModes)
		if err != nil {
			return nil, err
		}
		if !modes.Contains(req.TravelMode) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown travel mode %q", req.TravelMode))
		}
	}

	hasVisit, err := s.visits.ExistsForSalesmanOnDate(ctx, salesmanID, req.ClaimDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check visit evidence")
	}
	if !hasVisit {
		return nil, appErrors.ErrNoVisitForClaimDate
	}

	hasSpecimenData, err := s.visits.HasSpecimenDataOnDate(ctx, salesmanID, req.ClaimDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check specimen evidence")
	}

	withinLimit := req.Amount <= s.claimCeiling
	status := models.TadaStatusPending
	if !withinLimit {
		status = models.TadaStatusFlagged
	}

	claim := &models.TadaClaim{
		SalesmanID:      salesmanID,
		ClaimDate:       req.ClaimDate,
		City:            req.City,
		TravelMode:      req.TravelMode,
		Amount:          req.Amount,
		HasVisit:        hasVisit,
		HasSpecimenData: hasSpecimenData,
		WithinLimit:     withinLimit,
		Status:          status,
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create claim")
	}
	if !withinLimit && s.metrics != nil {
		s.metrics.CountClaimFlagged()
	}
	s.logger.Info("tada claim created",
		zap.String("claim_id", claim.ID),
		zap.String("salesman_id", salesmanID),
		zap.String("status", string(status)),
		zap.Bool("has_specimen_data", hasSpecimenData))
	return claim, nil
}

// Get returns one claim, restricted to its owner unless admin.
func (s *TadaService) Get(ctx context.Context, id, salesmanID string, admin bool) (*models.TadaClaim, error) {
	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "claim not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim")
	}
	if !admin && claim.SalesmanID != salesmanID {
		return nil, appErrors.ErrForbidden
	}
	return claim, nil
}

// List returns claims with pagination metadata.
func (s *TadaService) List(ctx context.Context, filter models.TadaFilter) ([]models.TadaClaim, *models.Pagination, error) {
	claims, total, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list claims")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return claims, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Approve resolves a pending or flagged claim as APPROVED.
func (s *TadaService) Approve(ctx context.Context, id string) (*models.TadaClaim, error) {
	return s.resolve(ctx, id, models.TadaStatusApproved, models.TadaStatusPending, models.TadaStatusFlagged)
}

// Reject resolves a pending or flagged claim as REJECTED.
func (s *TadaService) Reject(ctx context.Context, id string) (*models.TadaClaim, error) {
	return s.resolve(ctx, id, models.TadaStatusRejected, models.TadaStatusPending, models.TadaStatusFlagged)
}

// MarkPaid moves an approved claim to PAID.
func (s *TadaService) MarkPaid(ctx context.Context, id string) (*models.TadaClaim, error) {
	return s.resolve(ctx, id, models.TadaStatusPaid, models.TadaStatusApproved)
}

func (s *TadaService) resolve(ctx context.Context, id string, to models.TadaStatus, from ...models.TadaStatus) (*models.TadaClaim, error) {
	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "claim not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim")
	}
	allowed := false
	for _, status := range from {
		if claim.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("cannot move claim from %s to %s", claim.Status, to))
	}
	if err := s.claims.UpdateStatus(ctx, id, to); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update claim status")
	}
	claim.Status = to
	s.logger.Info("tada claim resolved", zap.String("claim_id", id), zap.String("status", string(to)))
	return claim, nil
}
