// Package claims provides PostgreSQL-backed repositories for settlement
// records written after a successful payout broadcast.
package claims

import (
	"context"
	"fmt"

	"ziplink/internal/dbx"
	"ziplink/internal/server/models"
)

// PostgresRepository implements claim storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (id, link_id, claimer_address, claimer_email, claimer_name,
			amount_transferred, tx_signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		claim.ID, claim.LinkID, claim.ClaimerAddress, claim.ClaimerEmail, claim.ClaimerName,
		claim.AmountTransferred, claim.TxSignature,
	).Scan(&claim.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByLinkID(ctx context.Context, linkID string) ([]*models.Claim, error) {
	query := `
		SELECT id, link_id, claimer_address, claimer_email, claimer_name,
			amount_transferred, tx_signature, created_at
		FROM claims WHERE link_id = $1 ORDER BY created_at DESC
	`
	return r.query(ctx, query, linkID)
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]*models.Claim, error) {
	query := `
		SELECT id, link_id, claimer_address, claimer_email, claimer_name,
			amount_transferred, tx_signature, created_at
		FROM claims ORDER BY created_at DESC LIMIT $1
	`
	return r.query(ctx, query, limit)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Claim
	for rows.Next() {
		var item models.Claim
		if err := rows.Scan(
			&item.ID, &item.LinkID, &item.ClaimerAddress, &item.ClaimerEmail, &item.ClaimerName,
			&item.AmountTransferred, &item.TxSignature, &item.CreatedAt,
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
