package services

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziplink/internal/common"
)

func TestAnalyticsSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAnalyticsService(nil, env.manager)

	for i := 0; i < 3; i++ {
		createLink(t, env, 1)
	}
	claimed := createLink(t, env, 0.5)
	recipient := solana.NewWallet().PublicKey()
	_, err := env.settle.Claim(ctx, claimed.LinkID, recipient.String(), "", "")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.TotalLinks)
	assert.Equal(t, int64(3), sum.ActiveLinks)
	assert.Equal(t, int64(1), sum.ClaimedLinks)
	assert.InDelta(t, 0.25, sum.ClaimRate, 1e-9)
	assert.Len(t, sum.RecentLinks, 4)
	require.Len(t, sum.RecentClaims, 1)
	assert.Equal(t, claimed.LinkID, sum.RecentClaims[0].LinkID)
}

func TestAnalyticsRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAnalyticsService(nil, env.manager)

	createLink(t, env, 1)

	rows, err := svc.Range(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].LinksCreated)

	_, err = svc.Range(ctx, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.Range(ctx, 400)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestAnalyticsSummary_EmptyStore(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(nil, env.manager)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalLinks)
	assert.Zero(t, sum.ClaimRate)
}
