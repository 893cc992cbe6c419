// Package links provides PostgreSQL-backed and in-memory repositories for
// link persistence and the conditional status transitions the settlement
// engine relies on.
package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ziplink/internal/common"
	"ziplink/internal/dbx"
	"ziplink/internal/server/models"
)

// PostgresRepository implements link storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const linkColumns = `id, link_id, url, escrow_public_key, encrypted_secret, face_amount,
		status, memo, title, creator_email, recipient, expires_at, claimed_at, created_at`

func (r *PostgresRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, link_id, url, escrow_public_key, encrypted_secret, face_amount,
			status, memo, title, creator_email, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		link.ID, link.LinkID, link.URL, link.EscrowPublicKey, link.EncryptedSecret,
		link.FaceAmount, link.Status, link.Memo, link.Title, link.CreatorEmail,
		link.ExpiresAt,
	).Scan(&link.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByLinkID(ctx context.Context, linkID string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE link_id = $1`

	link := &models.Link{}
	err := r.db.QueryRowContext(ctx, query, linkID).Scan(
		&link.ID, &link.LinkID, &link.URL, &link.EscrowPublicKey, &link.EncryptedSecret,
		&link.FaceAmount, &link.Status, &link.Memo, &link.Title, &link.CreatorEmail,
		&link.Recipient, &link.ExpiresAt, &link.ClaimedAt, &link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return link, nil
}

func (r *PostgresRepository) List(ctx context.Context, status models.LinkStatus, limit, offset int) ([]*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Link
	for rows.Next() {
		link := &models.Link{}
		if err := rows.Scan(
			&link.ID, &link.LinkID, &link.URL, &link.EscrowPublicKey, &link.EncryptedSecret,
			&link.FaceAmount, &link.Status, &link.Memo, &link.Title, &link.CreatorEmail,
			&link.Recipient, &link.ExpiresAt, &link.ClaimedAt, &link.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, status models.LinkStatus) (int64, error) {
	query := `SELECT count(*) FROM links WHERE ($1 = '' OR status = $1)`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateStatusIf(ctx context.Context, linkID string, from, to models.LinkStatus) error {
	query := `UPDATE links SET status = $3 WHERE link_id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, linkID, from, to)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return rowsOrConflict(res)
}

func (r *PostgresRepository) MarkClaimedIf(ctx context.Context, linkID string, from models.LinkStatus, recipient string, claimedAt time.Time) error {
	query := `UPDATE links SET status = $3, recipient = $4, claimed_at = $5
		WHERE link_id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, linkID, from, models.StatusClaimed, recipient, claimedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return rowsOrConflict(res)
}

// rowsOrConflict maps the rows-affected count of a conditional update to its
// outcome: one row updated means the transition won, zero means the guard no
// longer matched.
func rowsOrConflict(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrStatusConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
