package services

import (
	"context"
	"time"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/utils"
)

// MacrosService aggregates protein/fat/carb stats. The backend keys the
// three macros as B, Z and U on a shared endpoint.
type MacrosService struct {
	client   *api.Client
	executor *executor.Executor
}

// NewMacrosService creates a new macros service
func NewMacrosService(client *api.Client, exec *executor.Executor) *MacrosService {
	return &MacrosService{client: client, executor: exec}
}

func (s *MacrosService) fetchStats(ctx context.Context, from, to time.Time) executor.Outcome[models.MacroStats] {
	endpoint := api.BuildURLWithParams("/user/bzu", map[string]string{
		"from": utils.FormatDateTime(from),
		"to":   utils.FormatDateTime(to),
	})

	return executor.ExecuteHeavy(ctx, s.executor,
		func(ctx context.Context) (*api.Response[models.JobTicket], error) {
			return api.Get[models.JobTicket](ctx, s.client, endpoint)
		},
		func(ctx context.Context, requestID string) (*api.Response[models.MacroStats], error) {
			return api.Get[models.MacroStats](ctx, s.client, "/heavy_response/"+requestID)
		},
	)
}

func (s *MacrosService) totalForRange(ctx context.Context, from, to time.Time, noun string, value func(models.MacroStat) int) executor.Outcome[int] {
	result := s.fetchStats(ctx, from, to)
	if !result.IsSuccess() {
		return executor.FailWith[int](result.Err())
	}

	total := 0
	for _, stat := range result.Data().Stats {
		total += value(stat)
	}

	if total <= 0 {
		return executor.Fail[int](executor.KindEmptyBody, "no %s data for range", noun)
	}
	return executor.Resolve(total)
}

func (s *MacrosService) dailySeries(ctx context.Context, from, to time.Time, value func(models.MacroStat) int) executor.Outcome[[]DailyTotal] {
	result := s.fetchStats(ctx, from, to)
	if !result.IsSuccess() {
		return executor.FailWith[[]DailyTotal](result.Err())
	}

	series, err := bucketDaily(from, to, result.Data().Stats,
		func(stat models.MacroStat) string { return stat.Time },
		value,
	)
	if err != nil {
		return executor.Fail[[]DailyTotal](executor.KindExecution, "execution error: %v", err)
	}
	return executor.Resolve(series)
}

// ProteinForRange sums proteins in [from, to]; zero totals are errors.
func (s *MacrosService) ProteinForRange(ctx context.Context, from, to time.Time) executor.Outcome[int] {
	return s.totalForRange(ctx, from, to, "protein", func(stat models.MacroStat) int { return stat.Proteins })
}

// FatForRange sums fats in [from, to]; zero totals are errors.
func (s *MacrosService) FatForRange(ctx context.Context, from, to time.Time) executor.Outcome[int] {
	return s.totalForRange(ctx, from, to, "fat", func(stat models.MacroStat) int { return stat.Fats })
}

// CarbsForRange sums carbs in [from, to]; zero totals are errors.
func (s *MacrosService) CarbsForRange(ctx context.Context, from, to time.Time) executor.Outcome[int] {
	return s.totalForRange(ctx, from, to, "carbs", func(stat models.MacroStat) int { return stat.Carbs })
}

// ProteinDaily buckets proteins per local calendar day.
func (s *MacrosService) ProteinDaily(ctx context.Context, from, to time.Time) executor.Outcome[[]DailyTotal] {
	return s.dailySeries(ctx, from, to, func(stat models.MacroStat) int { return stat.Proteins })
}

// FatDaily buckets fats per local calendar day.
func (s *MacrosService) FatDaily(ctx context.Context, from, to time.Time) executor.Outcome[[]DailyTotal] {
	return s.dailySeries(ctx, from, to, func(stat models.MacroStat) int { return stat.Fats })
}

// CarbsDaily buckets carbs per local calendar day.
func (s *MacrosService) CarbsDaily(ctx context.Context, from, to time.Time) executor.Outcome[[]DailyTotal] {
	return s.dailySeries(ctx, from, to, func(stat models.MacroStat) int { return stat.Carbs })
}
