package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/grading"
	"github.com/noah-isme/pod-grading-api/internal/observability"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

// ReportService derives grade reports from the current snapshot. Period
// reports are cached per snapshot revision.
type ReportService interface {
	StudentBreakdown(studentID string) (grading.Breakdown, error)
	PeriodReport(ctx context.Context, period int, search string) grading.Report
	Dashboard() grading.DashboardStats
}

type reportService struct {
	store    *state.Store
	cache    *redis.Client
	cacheTTL time.Duration
	prefix   string
	logger   zerolog.Logger
}

// NewReportService constructs the report service. cache may be nil.
func NewReportService(store *state.Store, cache *redis.Client, channel string, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		prefix:   channel,
		logger:   logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) StudentBreakdown(studentID string) (grading.Breakdown, error) {
	snapshot := s.store.State()
	if _, err := state.RequireStudent(snapshot, studentID); err != nil {
		return grading.Breakdown{}, err
	}
	return grading.StudentBreakdown(studentID, snapshot), nil
}

func (s *reportService) PeriodReport(ctx context.Context, period int, search string) grading.Report {
	snapshot := s.store.State()
	search = strings.TrimSpace(search)
	cacheKey := fmt.Sprintf("%s:reports:%d:%d:%s", s.prefix, period, snapshot.Revision, url.QueryEscape(strings.ToLower(search)))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var report grading.Report
			if unmarshalErr := json.Unmarshal([]byte(cached), &report); unmarshalErr == nil {
				observability.ReportCacheTotal().WithLabelValues("hit").Inc()
				s.logger.Debug().Int("period", period).Int64("revision", snapshot.Revision).Msg("report cache hit")
				return report
			}
		} else if err != redis.Nil {
			observability.ReportCacheTotal().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Msg("failed to read report cache")
		}
	}

	report := grading.PeriodReport(snapshot, period, search)
	observability.ReportCacheTotal().WithLabelValues("miss").Inc()

	if s.cache != nil {
		payload, err := json.Marshal(report)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
			}
		}
	}

	return report
}

func (s *reportService) Dashboard() grading.DashboardStats {
	return grading.Dashboard(s.store.State())
}
