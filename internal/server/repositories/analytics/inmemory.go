package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"ziplink/internal/server/models"
)

// InMemoryRepository keeps rollup rows keyed by UTC day.
type InMemoryRepository struct {
	mu    sync.Mutex
	days  map[time.Time]*models.DailyAnalytics
	users map[time.Time]map[string]struct{}
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		days:  make(map[time.Time]*models.DailyAnalytics),
		users: make(map[time.Time]map[string]struct{}),
	}
}

func (r *InMemoryRepository) Upsert(_ context.Context, date time.Time, user string, delta Delta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := models.Day(date)
	row, ok := r.days[day]
	if !ok {
		row = &models.DailyAnalytics{Date: day}
		r.days[day] = row
	}
	row.LinksCreated += delta.LinksCreated
	row.LinksClaimed += delta.LinksClaimed
	row.TotalAmountCreated += delta.AmountCreated

	if user != "" {
		set, ok := r.users[day]
		if !ok {
			set = make(map[string]struct{})
			r.users[day] = set
		}
		set[user] = struct{}{}
	}
	return nil
}

func (r *InMemoryRepository) Range(_ context.Context, from, to time.Time) ([]*models.DailyAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fromDay, toDay := models.Day(from), models.Day(to)

	var result []*models.DailyAnalytics
	for day, row := range r.days {
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		c := *row
		c.UniqueUsers = int64(len(r.users[day]))
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
