package claims

import (
	"context"
	"sort"
	"sync"
	"time"

	"ziplink/internal/server/models"
)

// InMemoryRepository keeps claim records in a slice guarded by a mutex.
type InMemoryRepository struct {
	mu     sync.Mutex
	claims []*models.Claim
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(_ context.Context, claim *models.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	c := *claim
	r.claims = append(r.claims, &c)
	return nil
}

func (r *InMemoryRepository) ListByLinkID(_ context.Context, linkID string) ([]*models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Claim
	for _, claim := range r.claims {
		if claim.LinkID == linkID {
			c := *claim
			result = append(result, &c)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *InMemoryRepository) Recent(_ context.Context, limit int) ([]*models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Claim, 0, len(r.claims))
	for _, claim := range r.claims {
		c := *claim
		result = append(result, &c)
	}
	sortNewestFirst(result)
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func sortNewestFirst(claims []*models.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
}
