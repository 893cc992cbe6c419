package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_UpsertAccumulates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, day, "a@x", Delta{LinksCreated: 1, AmountCreated: 100}))
	require.NoError(t, repo.Upsert(ctx, day.Add(3*time.Hour), "a@x", Delta{LinksCreated: 1, AmountCreated: 50}))
	require.NoError(t, repo.Upsert(ctx, day.Add(5*time.Hour), "b@x", Delta{LinksClaimed: 1}))

	got, err := repo.Range(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, got, 1)

	row := got[0]
	assert.Equal(t, int64(2), row.LinksCreated)
	assert.Equal(t, int64(1), row.LinksClaimed)
	assert.Equal(t, uint64(150), row.TotalAmountCreated)
	assert.Equal(t, int64(2), row.UniqueUsers, "same user twice counts once")
}

func TestInMemory_RangeBoundsAndOrder(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	for _, d := range []time.Time{d3, d1, d2} {
		require.NoError(t, repo.Upsert(ctx, d, "", Delta{LinksCreated: 1}))
	}

	got, err := repo.Range(ctx, d1, d2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(d1))
	assert.True(t, got[1].Date.Equal(d2))

	none, err := repo.Range(ctx, d1.AddDate(0, 0, -10), d1.AddDate(0, 0, -5))
	require.NoError(t, err)
	assert.Empty(t, none)
}
