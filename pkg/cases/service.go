package cases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salulink/authi/pkg/common/kafka"
	"github.com/salulink/authi/pkg/common/logger"
	"github.com/salulink/authi/pkg/common/models"
)

const (
	caseListCacheKey   = "authi:cases:list"
	caseDetailCachePfx = "authi:cases:detail:"

	eventSource = "case-service"
)

// Service wraps the repository with input validation, a Redis read cache
// and case lifecycle events. Cache and event failures are logged and never
// fail the underlying operation.
type Service struct {
	repo     *Repository
	producer *kafka.Producer
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewService(repo *Repository, producer *kafka.Producer, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) Save(ctx context.Context, input models.CaseInput) (string, error) {
	if err := ValidateInput(input); err != nil {
		return "", err
	}

	caseID, err := s.repo.Save(ctx, input)
	if err != nil {
		return "", err
	}

	s.invalidate(ctx, caseListCacheKey)
	s.publish(ctx, "case_saved", map[string]interface{}{
		"case_id":             caseID,
		"detected_conditions": input.DetectedConditions,
		"icd_count":           len(input.ICDCodes),
		"treatment_count":     len(input.Treatments),
		"medicine_count":      len(input.Medicines),
	})

	return caseID, nil
}

func (s *Service) List(ctx context.Context) ([]models.CaseSummary, error) {
	var cached []models.CaseSummary
	if s.readCache(ctx, caseListCacheKey, &cached) {
		return cached, nil
	}

	summaries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, caseListCacheKey, summaries)
	return summaries, nil
}

func (s *Service) Get(ctx context.Context, caseID string) (models.CaseDetail, error) {
	var cached models.CaseDetail
	if s.readCache(ctx, caseDetailCachePfx+caseID, &cached) {
		return cached, nil
	}

	detail, err := s.repo.Get(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, err
	}

	s.writeCache(ctx, caseDetailCachePfx+caseID, detail)
	return detail, nil
}

func (s *Service) Delete(ctx context.Context, caseID string) error {
	if err := s.repo.Delete(ctx, caseID); err != nil {
		return err
	}

	s.invalidate(ctx, caseListCacheKey, caseDetailCachePfx+caseID)
	s.publish(ctx, "case_deleted", map[string]interface{}{"case_id": caseID})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish case event")
	}
}

func (s *Service) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("failed to decode cached case payload")
		return false
	}
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("failed to cache case payload")
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to invalidate case cache")
	}
}
