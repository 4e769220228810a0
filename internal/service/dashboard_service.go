package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/errors"
	"github.com/Salmaa-chiboub/coffee-meetings-platform/pkg/export"

	"github.com/Salmaa-chiboub/coffee-meetings-platform/internal/dto"
)

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type dashboardCampaignRepository interface {
	CountByManager(ctx context.Context, hrManagerID string) (int, error)
	CountActiveByManager(ctx context.Context, hrManagerID string, now time.Time) (int, error)
}

type dashboardEmployeeCounter interface {
	CountByManager(ctx context.Context, hrManagerID string) (int, error)
}

type dashboardPairRepository interface {
	CountByManager(ctx context.Context, hrManagerID string) (int, error)
	EmailSuccessRateByManager(ctx context.Context, hrManagerID string) (float64, error)
}

type dashboardEvaluationRepository interface {
	AverageForManager(ctx context.Context, hrManagerID string) (*float64, error)
	CountPending(ctx context.Context, hrManagerID string) (int, error)
	RatingDistribution(ctx context.Context, hrManagerID string) (map[int]int, error)
	MonthlyTrends(ctx context.Context, hrManagerID string, months int) ([]dto.TrendPoint, error)
	Recent(ctx context.Context, hrManagerID string, limit int) ([]dto.RecentEvaluationItem, error)
}

// DashboardService aggregates the HR landing-page numbers, cached in Redis
// since they fan out over several tables.
type DashboardService struct {
	campaigns   dashboardCampaignRepository
	employees   dashboardEmployeeCounter
	pairs       dashboardPairRepository
	evaluations dashboardEvaluationRepository
	cache       dashboardCache
	cacheTTL    time.Duration
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	campaigns dashboardCampaignRepository,
	employees dashboardEmployeeCounter,
	pairs dashboardPairRepository,
	evaluations dashboardEvaluationRepository,
	cache dashboardCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		campaigns:   campaigns,
		employees:   employees,
		pairs:       pairs,
		evaluations: evaluations,
		cache:       cache,
		cacheTTL:    cacheTTL,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Statistics returns the manager's aggregate numbers, served from cache
// when fresh.
func (s *DashboardService) Statistics(ctx context.Context, hrManagerID string) (*dto.DashboardStatisticsResponse, error) {
	cacheKey := "dashboard:" + hrManagerID + ":statistics"
	if s.cache != nil {
		var cached dto.DashboardStatisticsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats := &dto.DashboardStatisticsResponse{}
	var err error

	if stats.TotalCampaigns, err = s.campaigns.CountByManager(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count campaigns")
	}
	if stats.ActiveCampaigns, err = s.campaigns.CountActiveByManager(ctx, hrManagerID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active campaigns")
	}
	if stats.TotalEmployees, err = s.employees.CountByManager(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count employees")
	}
	if stats.TotalPairs, err = s.pairs.CountByManager(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pairs")
	}
	if stats.EmailSuccessRate, err = s.pairs.EmailSuccessRateByManager(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute email rate")
	}
	if stats.AverageRating, err = s.evaluations.AverageForManager(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute rating")
	}
	if stats.EvaluationsPending, err = s.evaluations.CountPending(ctx, hrManagerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending evaluations")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard statistics", zap.Error(err))
		}
	}
	return stats, nil
}

// RatingDistribution buckets submitted ratings 1..5.
func (s *DashboardService) RatingDistribution(ctx context.Context, hrManagerID string) (*dto.RatingDistributionResponse, error) {
	dist, err := s.evaluations.RatingDistribution(ctx, hrManagerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load distribution")
	}
	total := 0
	for _, count := range dist {
		total += count
	}
	return &dto.RatingDistributionResponse{Distribution: dist, Total: total}, nil
}

// Trends charts monthly evaluation volume and quality.
func (s *DashboardService) Trends(ctx context.Context, hrManagerID string, months int) (*dto.EvaluationTrendsResponse, error) {
	points, err := s.evaluations.MonthlyTrends(ctx, hrManagerID, months)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trends")
	}
	return &dto.EvaluationTrendsResponse{Points: points}, nil
}

// RecentEvaluations lists the freshest submitted feedback.
func (s *DashboardService) RecentEvaluations(ctx context.Context, hrManagerID string, limit int) ([]dto.RecentEvaluationItem, error) {
	items, err := s.evaluations.Recent(ctx, hrManagerID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent evaluations")
	}
	return items, nil
}

// ExportStatistics renders the dashboard numbers as CSV or PDF.
func (s *DashboardService) ExportStatistics(ctx context.Context, hrManagerID, format string) ([]byte, string, error) {
	stats, err := s.Statistics(ctx, hrManagerID)
	if err != nil {
		return nil, "", err
	}

	avg := "n/a"
	if stats.AverageRating != nil {
		avg = fmt.Sprintf("%.2f", *stats.AverageRating)
	}
	data := export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Total campaigns", "Value": strconv.Itoa(stats.TotalCampaigns)},
			{"Metric": "Active campaigns", "Value": strconv.Itoa(stats.ActiveCampaigns)},
			{"Metric": "Total employees", "Value": strconv.Itoa(stats.TotalEmployees)},
			{"Metric": "Total pairs", "Value": strconv.Itoa(stats.TotalPairs)},
			{"Metric": "Email success rate", "Value": fmt.Sprintf("%.1f%%", stats.EmailSuccessRate*100)},
			{"Metric": "Average rating", "Value": avg},
			{"Metric": "Evaluations pending", "Value": strconv.Itoa(stats.EvaluationsPending)},
		},
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf", "":
		payload, err := s.pdf.Render(data, "Coffee meetings dashboard")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
