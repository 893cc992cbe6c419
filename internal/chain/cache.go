package chain

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/coocood/freecache"
	"github.com/gagliardetto/solana-go"

	"ziplink/internal/keys"
)

// CachedClient wraps a Client with a short-lived balance cache so that link
// detail reads do not hammer the RPC endpoint. Transfers and airdrops
// invalidate the affected addresses; the settlement path reads through the
// inner client untouched because it is handed the inner Client directly.
type CachedClient struct {
	inner      Client
	cache      *freecache.Cache
	ttlSeconds int
}

func NewCachedClient(inner Client, cacheSizeBytes int, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner:      inner,
		cache:      freecache.NewCache(cacheSizeBytes),
		ttlSeconds: int(ttl.Seconds()),
	}
}

func (c *CachedClient) Reserve() uint64 {
	return c.inner.Reserve()
}

func (c *CachedClient) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	key := addr.Bytes()
	if cached, err := c.cache.Get(key); err == nil && len(cached) == 8 {
		return binary.BigEndian.Uint64(cached), nil
	}

	balance, err := c.inner.Balance(ctx, addr)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, balance)
	_ = c.cache.Set(key, buf, c.ttlSeconds)

	return balance, nil
}

func (c *CachedClient) Transfer(ctx context.Context, from *keys.Keypair, to solana.PublicKey, lamports uint64) (string, error) {
	sig, err := c.inner.Transfer(ctx, from, to, lamports)
	c.cache.Del(from.PublicKey().Bytes())
	c.cache.Del(to.Bytes())
	return sig, err
}

func (c *CachedClient) RequestAirdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) (string, error) {
	sig, err := c.inner.RequestAirdrop(ctx, addr, lamports)
	c.cache.Del(addr.Bytes())
	return sig, err
}
