package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

type referenceReader interface {
	ListPolicies(ctx context.Context) ([]models.ExpensePolicy, error)
	ListVocabulary(ctx context.Context, kind models.VocabularyKind) ([]string, error)
}

type entityLister interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.Entity, int, error)
	FindContacts(ctx context.Context, entityID string) ([]models.Contact, error)
}

// ReferenceService serves the static reference data the form controller and
// validators branch on, through a Redis read-through cache. Entities and
// allocations are live data and bypass the cache.
type ReferenceService struct {
	reference referenceReader
	entities  entityLister
	specimens flowAllocationReader
	redis     *redis.Client
	metrics   *MetricsService
	ttl       time.Duration
	logger    *zap.Logger
}

// NewReferenceService constructs ReferenceService. A nil redis client
// disables caching and every read hits the database.
func NewReferenceService(reference referenceReader, entities entityLister, specimens flowAllocationReader, redisClient *redis.Client, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		reference: reference,
		entities:  entities,
		specimens: specimens,
		redis:     redisClient,
		metrics:   metrics,
		ttl:       ttl,
		logger:    logger,
	}
}

// Vocabulary returns the value set of one vocabulary kind.
func (s *ReferenceService) Vocabulary(ctx context.Context, kind models.VocabularyKind) (models.Vocabulary, error) {
	key := fmt.Sprintf("reference:vocabulary:%s", kind)
	var vocabulary models.Vocabulary
	if s.readCache(ctx, key, &vocabulary) {
		return vocabulary, nil
	}
	values, err := s.reference.ListVocabulary(ctx, kind)
	if err != nil {
		return models.Vocabulary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vocabulary")
	}
	vocabulary = models.Vocabulary{Kind: kind, Values: values}
	s.writeCache(ctx, key, vocabulary)
	return vocabulary, nil
}

// Policies returns all expense policies.
func (s *ReferenceService) Policies(ctx context.Context) ([]models.ExpensePolicy, error) {
	const key = "reference:policies"
	var policies []models.ExpensePolicy
	if s.readCache(ctx, key, &policies) {
		return policies, nil
	}
	policies, err := s.reference.ListPolicies(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expense policies")
	}
	s.writeCache(ctx, key, policies)
	return policies, nil
}

// Entities returns visitable entities with pagination metadata.
func (s *ReferenceService) Entities(ctx context.Context, filter models.EntityFilter) ([]models.Entity, *models.Pagination, error) {
	entities, total, err := s.entities.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entities")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return entities, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Contacts returns the known contacts of one entity.
func (s *ReferenceService) Contacts(ctx context.Context, entityID string) ([]models.Contact, error) {
	contacts, err := s.entities.FindContacts(ctx, entityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contacts")
	}
	return contacts, nil
}

// Allocations returns the salesman's specimen allocations with live
// remaining quantities.
func (s *ReferenceService) Allocations(ctx context.Context, salesmanID string) ([]models.SpecimenAllocationDetail, error) {
	allocations, err := s.specimens.ListAllocations(ctx, salesmanID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}
	return allocations, nil
}

func (s *ReferenceService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.redis == nil {
		return false
	}
	payload, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("reference cache payload corrupt", zap.String("key", key), zap.Error(err))
		s.metrics.RecordCacheOperation(false)
		return false
	}
	s.metrics.RecordCacheOperation(true)
	return true
}

func (s *ReferenceService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("reference cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}
