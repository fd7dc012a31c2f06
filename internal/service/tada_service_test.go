package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type tadaStoreStub struct {
	claims map[string]*models.TadaClaim
	seq    int
}

func newTadaStoreStub() *tadaStoreStub {
	return &tadaStoreStub{claims: map[string]*models.TadaClaim{}}
}

func (s *tadaStoreStub) Create(ctx context.Context, claim *models.TadaClaim) error {
	s.seq++
	claim.ID = fmt.Sprintf("claim-%d", s.seq)
	s.claims[claim.ID] = claim
	return nil
}

func (s *tadaStoreStub) FindByID(ctx context.Context, id string) (*models.TadaClaim, error) {
	if c, ok := s.claims[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *tadaStoreStub) UpdateStatus(ctx context.Context, id string, status models.TadaStatus) error {
	s.claims[id].Status = status
	return nil
}

func (s *tadaStoreStub) List(ctx context.Context, filter models.TadaFilter) ([]models.TadaClaim, int, error) {
	out := []models.TadaClaim{}
	for _, c := range s.claims {
		out = append(out, *c)
	}
	return out, len(out), nil
}

type visitEvidenceStub struct {
	visitDates    map[string]bool
	specimenDates map[string]bool
}

func evidenceKey(salesmanID string, date time.Time) string {
	return salesmanID + "|" + date.Format("2006-01-02")
}

func (s *visitEvidenceStub) ExistsForSalesmanOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error) {
	return s.visitDates[evidenceKey(salesmanID, date)], nil
}

func (s *visitEvidenceStub) HasSpecimenDataOnDate(ctx context.Context, salesmanID string, date time.Time) (bool, error) {
	return s.specimenDates[evidenceKey(salesmanID, date)], nil
}

const testClaimCeiling = int64(200000)

func tadaFixture() (*TadaService, *tadaStoreStub, *visitEvidenceStub) {
	store := newTadaStoreStub()
	evidence := &visitEvidenceStub{
		visitDates:    map[string]bool{evidenceKey("s1", day(10)): true},
		specimenDates: map[string]bool{},
	}
	vocab := &vocabStub{values: map[models.VocabularyKind][]string{
		models.VocabularyTravelModes: {"BUS", "TRAIN", "OWN_VEHICLE"},
	}}
	return NewTadaService(store, evidence, vocab, nil, testClaimCeiling, nil, nil), store, evidence
}

func validClaim(amount int64) CreateClaimRequest {
	return CreateClaimRequest{
		ClaimDate:  day(10),
		City:       "Pune",
		TravelMode: "BUS",
		Amount:     amount,
	}
}

func TestCreateClaimRequiresVisitOnDate(t *testing.T) {
	svc, _, _ := tadaFixture()

	req := validClaim(50000)
	req.ClaimDate = day(11)
	_, err := svc.CreateClaim(context.Background(), "s1", req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoVisitForClaimDate))

	// same date, different salesman
	_, err = svc.CreateClaim(context.Background(), "s2", validClaim(50000))
	assert.True(t, appErrors.Is(err, appErrors.ErrNoVisitForClaimDate))
}

func TestCreateClaimWithinCeilingIsPending(t *testing.T) {
	svc, _, _ := tadaFixture()

	claim, err := svc.CreateClaim(context.Background(), "s1", validClaim(50000))
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusPending, claim.Status)
	assert.True(t, claim.HasVisit)
	assert.True(t, claim.WithinLimit)
	assert.False(t, claim.HasSpecimenData)
}

func TestCreateClaimAtCeilingIsPending(t *testing.T) {
	svc, _, _ := tadaFixture()

	claim, err := svc.CreateClaim(context.Background(), "s1", validClaim(testClaimCeiling))
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusPending, claim.Status)
	assert.True(t, claim.WithinLimit)
}

func TestCreateClaimOverCeilingIsFlagged(t *testing.T) {
	svc, _, _ := tadaFixture()

	claim, err := svc.CreateClaim(context.Background(), "s1", validClaim(testClaimCeiling+1))
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusFlagged, claim.Status)
	assert.False(t, claim.WithinLimit)
}

func TestCreateClaimRecordsSpecimenEvidence(t *testing.T) {
	svc, _, evidence := tadaFixture()
	evidence.specimenDates[evidenceKey("s1", day(10))] = true

	claim, err := svc.CreateClaim(context.Background(), "s1", validClaim(50000))
	require.NoError(t, err)
	assert.True(t, claim.HasSpecimenData)
	// informational only, status stays PENDING
	assert.Equal(t, models.TadaStatusPending, claim.Status)
}

func TestCreateClaimUnknownTravelMode(t *testing.T) {
	svc, _, _ := tadaFixture()

	req := validClaim(50000)
	req.TravelMode = "TELEPORT"
	_, err := svc.CreateClaim(context.Background(), "s1", req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestClaimResolution(t *testing.T) {
	svc, store, _ := tadaFixture()
	ctx := context.Background()

	pending, err := svc.CreateClaim(ctx, "s1", validClaim(50000))
	require.NoError(t, err)

	// pending cannot be paid directly
	_, err = svc.MarkPaid(ctx, pending.ID)
	require.Error(t, err)

	approved, err := svc.Approve(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusApproved, approved.Status)

	// approved cannot be rejected
	_, err = svc.Reject(ctx, pending.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))

	paid, err := svc.MarkPaid(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusPaid, paid.Status)

	// paid is terminal
	_, err = svc.Approve(ctx, pending.ID)
	require.Error(t, err)
	assert.Equal(t, models.TadaStatusPaid, store.claims[pending.ID].Status)
}

func TestFlaggedClaimCanBeResolved(t *testing.T) {
	svc, _, _ := tadaFixture()
	ctx := context.Background()

	flagged, err := svc.CreateClaim(ctx, "s1", validClaim(testClaimCeiling*2))
	require.NoError(t, err)
	require.Equal(t, models.TadaStatusFlagged, flagged.Status)

	rejected, err := svc.Reject(ctx, flagged.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TadaStatusRejected, rejected.Status)
}

func TestClaimOwnerScoping(t *testing.T) {
	svc, _, _ := tadaFixture()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, "s1", validClaim(50000))
	require.NoError(t, err)

	_, err = svc.Get(ctx, claim.ID, "s2", false)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	got, err := svc.Get(ctx, claim.ID, "s2", true)
	require.NoError(t, err)
	assert.Equal(t, claim.ID, got.ID)
}
