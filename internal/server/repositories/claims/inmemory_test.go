package claims

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziplink/internal/server/models"
)

func TestInMemory_CreateAndList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.Claim{ID: "c1", LinkID: "lnk1", TxSignature: "s1", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.Claim{ID: "c2", LinkID: "lnk1", TxSignature: "s2", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.Claim{ID: "c3", LinkID: "other", TxSignature: "s3", CreatedAt: base.Add(2 * time.Hour)}))

	got, err := repo.ListByLinkID(ctx, "lnk1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID) // newest first

	none, err := repo.ListByLinkID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemory_Recent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, repo.Create(ctx, &models.Claim{
			ID: id, LinkID: "lnk1", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
}

func TestInMemory_CreateSetsCreatedAt(t *testing.T) {
	repo := NewInMemoryRepository()
	claim := &models.Claim{ID: "c1", LinkID: "lnk1"}
	require.NoError(t, repo.Create(context.Background(), claim))
	assert.False(t, claim.CreatedAt.IsZero())
}
