package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"
	"log/slog"
	"time"
)

const summaryCacheKey = "summary"

type ReportService interface {
	Summary(ctx context.Context) (*Summary, error)

	CollectorStats(ctx context.Context, actor user.Actor) (*CollectorStats, error)

	ExportSummary(ctx context.Context) ([]byte, string, error)
}

type reportServiceImpl struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewReportService(r Repository, cache Cache, ttl time.Duration, logger *slog.Logger) ReportService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &reportServiceImpl{
		repo:   r,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "ReportService"),
		now:    time.Now,
	}
}

func (s *reportServiceImpl) Summary(ctx context.Context) (*Summary, error) {
	if cached, ok := s.cachedSummary(ctx); ok {
		monitoring.RecordReportCache("hit")
		return cached, nil
	}
	monitoring.RecordReportCache("miss")

	now := s.now()
	summary, err := s.repo.Summary(ctx, MonthStart(now))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build summary report", "error", err)
		return nil, fmt.Errorf("%w: failed to build summary: %w", apperrors.ErrInternalServer, err)
	}
	summary.GeneratedAt = now

	if s.ttl > 0 {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, summaryCacheKey, payload, s.ttl); err != nil {
				s.logger.WarnContext(ctx, "Failed to cache summary report", "error", err)
			}
		}
	}
	return summary, nil
}

func (s *reportServiceImpl) cachedSummary(ctx context.Context) (*Summary, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, summaryCacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "Summary cache unavailable", "error", err)
		}
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		s.logger.WarnContext(ctx, "Discarding unreadable cached summary", "error", err)
		_ = s.cache.Delete(ctx, summaryCacheKey)
		return nil, false
	}
	return &summary, true
}

func (s *reportServiceImpl) CollectorStats(ctx context.Context, actor user.Actor) (*CollectorStats, error) {
	stats, err := s.repo.CollectorStats(ctx, actor.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build collector stats", "collectorID", actor.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to build collector stats: %w", apperrors.ErrInternalServer, err)
	}
	stats.CollectorID = actor.ID
	return stats, nil
}

func (s *reportServiceImpl) ExportSummary(ctx context.Context) ([]byte, string, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, "", err
	}
	data, filename, err := ExportXLSX(summary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to export summary", "error", err)
		return nil, "", fmt.Errorf("%w: failed to export summary: %w", apperrors.ErrInternalServer, err)
	}
	return data, filename, nil
}
