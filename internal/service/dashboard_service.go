package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	appErrors "github.com/noah-isme/school-fees-api/pkg/errors"
)

const dashboardCacheKey = "dash:summary"

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

type feeLister interface {
	List(ctx context.Context) ([]models.FeeWithStudent, error)
}

// DashboardService derives summary statistics from the student and fee
// collections. The computation is read-only and runs afresh on every call;
// the optional cache in front of it is feature-flagged and off by default.
type DashboardService struct {
	students studentLister
	fees     feeLister
	cache    *CacheService
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students studentLister, fees feeLister, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{students: students, fees: fees, cache: cache, logger: logger}
}

// Summary computes dashboard totals and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardSummary, bool, error) {
	if s.cache.Enabled() {
		var cached dto.DashboardSummary
		if s.cache.Get(ctx, dashboardCacheKey, &cached) {
			return &cached, true, nil
		}
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, false, appErrors.FromError(err)
	}
	fees, err := s.fees.List(ctx)
	if err != nil {
		return nil, false, appErrors.FromError(err)
	}

	summary := &dto.DashboardSummary{TotalStudents: len(students)}
	classes := make(map[string]struct{})
	for _, student := range students {
		classes[student.Class] = struct{}{}
	}
	summary.TotalClasses = len(classes)
	for _, fee := range fees {
		summary.TotalFees += fee.Amount
		if fee.Status == models.FeeStatusPending {
			summary.PendingFees++
		}
	}

	if s.cache.Enabled() {
		s.cache.Set(ctx, dashboardCacheKey, summary)
	}
	return summary, false, nil
}
