package services

import (
	"fmt"
	"time"

	"github.com/arodin/nutrisync/internal/utils"
)

// DailyTotal is one bucket of a per-day series.
type DailyTotal struct {
	Day   time.Time
	Value int
}

// bucketDaily converts sparse dated records into one bucket per local
// calendar day across [from, to], ascending, with gap days valued at zero.
func bucketDaily[S any](from, to time.Time, stats []S, when func(S) string, value func(S) int) ([]DailyTotal, error) {
	grouped := make(map[time.Time]int)
	for _, stat := range stats {
		ts, err := utils.ParseDateTime(when(stat))
		if err != nil {
			return nil, fmt.Errorf("error parsing record time %q: %w", when(stat), err)
		}
		grouped[utils.DayOf(ts)] += value(stat)
	}

	var series []DailyTotal
	last := utils.DayOf(to)
	for day := utils.DayOf(from); !day.After(last); day = day.AddDate(0, 0, 1) {
		series = append(series, DailyTotal{Day: day, Value: grouped[day]})
	}
	return series, nil
}
