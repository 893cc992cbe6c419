package claims

import (
	"context"

	"ziplink/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, claim *models.Claim) error
	ListByLinkID(ctx context.Context, linkID string) ([]*models.Claim, error)
	Recent(ctx context.Context, limit int) ([]*models.Claim, error)
}
