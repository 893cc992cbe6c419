// Package analytics provides the daily rollup repository backing the admin
// analytics API. Counters are incremented in place; unique users are kept in
// a companion table so repeated activity by one user counts once per day.
package analytics

import (
	"context"
	"fmt"
	"time"

	"ziplink/internal/dbx"
	"ziplink/internal/server/models"
)

// PostgresRepository implements the rollup over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, date time.Time, user string, delta Delta) error {
	day := models.Day(date)

	query := `
		INSERT INTO daily_analytics (date, links_created, links_claimed, total_amount_created)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date)
		DO UPDATE SET
			links_created = daily_analytics.links_created + EXCLUDED.links_created,
			links_claimed = daily_analytics.links_claimed + EXCLUDED.links_claimed,
			total_amount_created = daily_analytics.total_amount_created + EXCLUDED.total_amount_created;
	`
	if _, err := r.db.ExecContext(ctx, query,
		day, delta.LinksCreated, delta.LinksClaimed, delta.AmountCreated); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if user != "" {
		query := `INSERT INTO daily_users (date, email) VALUES ($1, $2) ON CONFLICT DO NOTHING;`
		if _, err := r.db.ExecContext(ctx, query, day, user); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Range(ctx context.Context, from, to time.Time) ([]*models.DailyAnalytics, error) {
	query := `
		SELECT d.date, d.links_created, d.links_claimed, d.total_amount_created,
			(SELECT count(*) FROM daily_users u WHERE u.date = d.date) AS unique_users
		FROM daily_analytics d
		WHERE d.date >= $1 AND d.date <= $2
		ORDER BY d.date
	`
	rows, err := r.db.QueryContext(ctx, query, models.Day(from), models.Day(to))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.DailyAnalytics
	for rows.Next() {
		var item models.DailyAnalytics
		if err := rows.Scan(
			&item.Date, &item.LinksCreated, &item.LinksClaimed,
			&item.TotalAmountCreated, &item.UniqueUsers,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
