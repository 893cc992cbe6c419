package links

import (
	"context"
	"sort"
	"sync"
	"time"

	"ziplink/internal/common"
	"ziplink/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map implementation with the same
// conditional-update semantics as the PostgreSQL repository. Used in tests
// and when no database DSN is configured.
type InMemoryRepository struct {
	mu    sync.Mutex
	links map[string]*models.Link
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{links: make(map[string]*models.Link)}
}

func cloneLink(l *models.Link) *models.Link {
	c := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	if l.ClaimedAt != nil {
		t := *l.ClaimedAt
		c.ClaimedAt = &t
	}
	return &c
}

func (r *InMemoryRepository) Create(_ context.Context, link *models.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	r.links[link.LinkID] = cloneLink(link)
	return nil
}

func (r *InMemoryRepository) GetByLinkID(_ context.Context, linkID string) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[linkID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneLink(link), nil
}

func (r *InMemoryRepository) List(_ context.Context, status models.LinkStatus, limit, offset int) ([]*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*models.Link
	for _, link := range r.links {
		if status != "" && link.Status != status {
			continue
		}
		all = append(all, cloneLink(link))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *InMemoryRepository) Count(_ context.Context, status models.LinkStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, link := range r.links {
		if status == "" || link.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) UpdateStatusIf(_ context.Context, linkID string, from, to models.LinkStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[linkID]
	if !ok || link.Status != from {
		return common.ErrStatusConflict
	}
	link.Status = to
	return nil
}

func (r *InMemoryRepository) MarkClaimedIf(_ context.Context, linkID string, from models.LinkStatus, recipient string, claimedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[linkID]
	if !ok || link.Status != from {
		return common.ErrStatusConflict
	}
	link.Status = models.StatusClaimed
	link.Recipient = recipient
	t := claimedAt
	link.ClaimedAt = &t
	return nil
}
