package models

import "time"

// DailyAnalytics is the per-calendar-date rollup fed by link creation and
// settlement. Rows are upserted: first event of a day creates the row,
// later events increment counters.
type DailyAnalytics struct {
	Date               time.Time // UTC midnight
	LinksCreated       int64
	LinksClaimed       int64
	TotalAmountCreated uint64 // lamports
	UniqueUsers        int64
}

// Day truncates t to its UTC calendar date, the rollup key.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
