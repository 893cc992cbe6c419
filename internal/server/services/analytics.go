// This file implements AnalyticsService, the read-only admin view over the
// daily rollup and the link/claim tables.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ziplink/internal/common"
	"ziplink/internal/dbx"
	"ziplink/internal/server/models"
	"ziplink/internal/server/repositories/repomanager"
)

const recentItems = 10

// Summary aggregates totals for the admin dashboard.
type Summary struct {
	TotalLinks   int64
	ActiveLinks  int64
	ClaimedLinks int64
	ClaimRate    float64
	RecentLinks  []*models.Link
	RecentClaims []*models.Claim
}

// AnalyticsService serves the admin analytics endpoints.
type AnalyticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewAnalyticsService(db *sql.DB, m repomanager.RepositoryManager) *AnalyticsService {
	return &AnalyticsService{db: db, repomanager: m, now: time.Now}
}

func (s *AnalyticsService) dbtx() dbx.DBTX {
	if s.db == nil {
		return nil
	}
	return s.db
}

// Summary returns lifetime totals plus the most recent links and claims.
func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	linksRepo := s.repomanager.Links(s.dbtx())

	total, err := linksRepo.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("error counting links: %v", err)
	}
	active, err := linksRepo.Count(ctx, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("error counting links: %v", err)
	}
	claimed, err := linksRepo.Count(ctx, models.StatusClaimed)
	if err != nil {
		return nil, fmt.Errorf("error counting links: %v", err)
	}

	recentLinks, err := linksRepo.List(ctx, "", recentItems, 0)
	if err != nil {
		return nil, fmt.Errorf("error listing links: %v", err)
	}
	recentClaims, err := s.repomanager.Claims(s.dbtx()).Recent(ctx, recentItems)
	if err != nil {
		return nil, fmt.Errorf("error listing claims: %v", err)
	}

	var rate float64
	if total > 0 {
		rate = float64(claimed) / float64(total)
	}

	return &Summary{
		TotalLinks:   total,
		ActiveLinks:  active,
		ClaimedLinks: claimed,
		ClaimRate:    rate,
		RecentLinks:  recentLinks,
		RecentClaims: recentClaims,
	}, nil
}

// Range returns the daily rollup for the trailing number of days, today
// included.
func (s *AnalyticsService) Range(ctx context.Context, days int) ([]*models.DailyAnalytics, error) {
	if days <= 0 || days > 365 {
		return nil, fmt.Errorf("%w: days must be in [1, 365]", common.ErrInvalidInput)
	}
	to := s.now()
	from := to.AddDate(0, 0, -(days - 1))
	return s.repomanager.Analytics(s.dbtx()).Range(ctx, from, to)
}
