package services

import (
	"context"
	"time"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/utils"
)

// CaloriesService aggregates calorie stats fetched through the heavy
// request flow.
type CaloriesService struct {
	client   *api.Client
	executor *executor.Executor
}

// NewCaloriesService creates a new calories service
func NewCaloriesService(client *api.Client, exec *executor.Executor) *CaloriesService {
	return &CaloriesService{client: client, executor: exec}
}

func (s *CaloriesService) fetchStats(ctx context.Context, from, to time.Time) executor.Outcome[models.CalorieStats] {
	endpoint := api.BuildURLWithParams("/user/calories", map[string]string{
		"from": utils.FormatDateTime(from),
		"to":   utils.FormatDateTime(to),
	})

	return executor.ExecuteHeavy(ctx, s.executor,
		func(ctx context.Context) (*api.Response[models.JobTicket], error) {
			return api.Get[models.JobTicket](ctx, s.client, endpoint)
		},
		func(ctx context.Context, requestID string) (*api.Response[models.CalorieStats], error) {
			return api.Get[models.CalorieStats](ctx, s.client, "/heavy_response/"+requestID)
		},
	)
}

// TotalForRange sums the calories consumed in [from, to]. A range with no
// recorded calories is reported as an error, not a zero total.
func (s *CaloriesService) TotalForRange(ctx context.Context, from, to time.Time) executor.Outcome[int] {
	result := s.fetchStats(ctx, from, to)
	if !result.IsSuccess() {
		return executor.FailWith[int](result.Err())
	}

	total := 0
	for _, stat := range result.Data().Stats {
		total += stat.Calories
	}

	if total <= 0 {
		return executor.Fail[int](executor.KindEmptyBody, "no calorie data for range")
	}
	return executor.Resolve(total)
}

// DailyTotals buckets the range's calories into one entry per local
// calendar day, zeros filled, ascending.
func (s *CaloriesService) DailyTotals(ctx context.Context, from, to time.Time) executor.Outcome[[]DailyTotal] {
	result := s.fetchStats(ctx, from, to)
	if !result.IsSuccess() {
		return executor.FailWith[[]DailyTotal](result.Err())
	}

	series, err := bucketDaily(from, to, result.Data().Stats,
		func(stat models.CalorieStat) string { return stat.Time },
		func(stat models.CalorieStat) int { return stat.Calories },
	)
	if err != nil {
		return executor.Fail[[]DailyTotal](executor.KindExecution, "execution error: %v", err)
	}
	return executor.Resolve(series)
}
