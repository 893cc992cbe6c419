package chain

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"ziplink/internal/common"
	"ziplink/internal/keys"
)

// MockTransfer records one settled transfer for assertions.
type MockTransfer struct {
	From      string
	To        string
	Lamports  uint64
	Signature string
}

// Mock is an in-memory settlement network for tests: balances live in a map,
// transfers move lamports synchronously. Error fields let tests force
// specific failure modes.
type Mock struct {
	mu        sync.Mutex
	balances  map[solana.PublicKey]uint64
	transfers []MockTransfer
	reserve   uint64

	BalanceErr  error
	TransferErr error
}

func NewMock() *Mock {
	return &Mock{
		balances: make(map[solana.PublicKey]uint64),
		reserve:  DefaultReserve,
	}
}

func (m *Mock) Reserve() uint64 {
	return m.reserve
}

// SetBalance seeds the balance of addr.
func (m *Mock) SetBalance(addr solana.PublicKey, lamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[addr] = lamports
}

func (m *Mock) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BalanceErr != nil {
		return 0, m.BalanceErr
	}
	return m.balances[addr], nil
}

func (m *Mock) Transfer(ctx context.Context, from *keys.Keypair, to solana.PublicKey, lamports uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TransferErr != nil {
		return "", m.TransferErr
	}

	src := from.PublicKey()
	if m.balances[src] < lamports {
		return "", common.ErrInsufficientFunds
	}

	sig, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}

	m.balances[src] -= lamports
	m.balances[to] += lamports
	m.transfers = append(m.transfers, MockTransfer{
		From:      src.String(),
		To:        to.String(),
		Lamports:  lamports,
		Signature: sig,
	})
	return sig, nil
}

func (m *Mock) RequestAirdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TransferErr != nil {
		return "", m.TransferErr
	}
	m.balances[addr] += lamports
	return common.MakeRandHexString(32)
}

// Transfers returns a copy of all recorded transfers.
func (m *Mock) Transfers() []MockTransfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockTransfer, len(m.transfers))
	copy(out, m.transfers)
	return out
}
