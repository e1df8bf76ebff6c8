package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"placement_backend/internal/cache"
	"placement_backend/internal/logger"
	"placement_backend/internal/repositories"
	"placement_backend/pkg/apperrors"
)

const (
	statsCacheKey = "admin:stats"
	StatsCacheTTL = 60 * time.Second
)

type AnalyticsService interface {
	// PlatformStats - сводка для админки, кэшируется на минуту
	PlatformStats(ctx context.Context, db *gorm.DB) (*repositories.PlatformStats, error)
	InvalidateStats(ctx context.Context)
}

type analyticsService struct {
	analyticsRepo repositories.AnalyticsRepository
	store         cache.Store
}

func NewAnalyticsService(analyticsRepo repositories.AnalyticsRepository, store cache.Store) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		store:         store,
	}
}

func (s *analyticsService) PlatformStats(ctx context.Context, db *gorm.DB) (*repositories.PlatformStats, error) {
	var cached repositories.PlatformStats
	err := cache.GetJSON(ctx, s.store, statsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// кэш недоступен - считаем напрямую
		logger.Warn("Stats cache read failed", "error", err)
	}

	stats, err := s.analyticsRepo.GetPlatformStats(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := cache.SetJSON(ctx, s.store, statsCacheKey, stats, StatsCacheTTL); err != nil {
		logger.Warn("Stats cache write failed", "error", err)
	}
	return stats, nil
}

func (s *analyticsService) InvalidateStats(ctx context.Context) {
	if err := s.store.Delete(ctx, statsCacheKey); err != nil {
		logger.Warn("Stats cache invalidation failed", "error", err)
	}
}
