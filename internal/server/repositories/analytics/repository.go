package analytics

import (
	"context"
	"time"

	"ziplink/internal/server/models"
)

// Delta is a set of counter increments applied to one day's rollup row.
type Delta struct {
	LinksCreated  int64
	LinksClaimed  int64
	AmountCreated uint64
}

type Repository interface {
	// Upsert adds delta to the rollup row for date, creating it if absent.
	// A non-empty user is also recorded for the day's unique-user count;
	// recording the same user twice on one day is a no-op.
	Upsert(ctx context.Context, date time.Time, user string, delta Delta) error
	// Range returns rollup rows with from <= date <= to, ordered by date.
	Range(ctx context.Context, from, to time.Time) ([]*models.DailyAnalytics, error)
}
