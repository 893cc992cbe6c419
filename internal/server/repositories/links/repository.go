package links

import (
	"context"
	"time"

	"ziplink/internal/server/models"
)

// Repository persists Link rows. Status transitions go through the
// conditional updates only, so the "claim exactly once" guarantee lives in
// the store and not in caller discipline.
type Repository interface {
	Create(ctx context.Context, link *models.Link) error

	// GetByLinkID returns common.ErrorNotFound when no such slug exists.
	GetByLinkID(ctx context.Context, linkID string) (*models.Link, error)

	// List returns links ordered by creation time descending. An empty
	// status matches every status.
	List(ctx context.Context, status models.LinkStatus, limit, offset int) ([]*models.Link, error)
	Count(ctx context.Context, status models.LinkStatus) (int64, error)

	// UpdateStatusIf transitions linkID from -> to atomically. When the row
	// is no longer in the from status it returns common.ErrStatusConflict
	// and changes nothing.
	UpdateStatusIf(ctx context.Context, linkID string, from, to models.LinkStatus) error

	// MarkClaimedIf is the claim CAS: transition from -> claimed, stamping
	// the claim time and the recipient in the same conditional update.
	// Losing racers get common.ErrStatusConflict.
	MarkClaimedIf(ctx context.Context, linkID string, from models.LinkStatus, recipient string, claimedAt time.Time) error
}
