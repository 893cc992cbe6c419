// Package chain is the boundary to the settlement network. The rest of the
// server talks to the Client interface; production wires the Solana RPC
// implementation, tests wire the in-memory Mock.
package chain

import (
	"context"
	"math"

	"github.com/gagliardetto/solana-go"

	"ziplink/internal/keys"
)

// DefaultReserve is the minimum lamport balance the network requires an
// account to retain; payouts always leave it behind.
const DefaultReserve uint64 = 5000

// LamportsPerSol converts between display units and on-chain units.
const LamportsPerSol uint64 = 1_000_000_000

// Client is the settlement-network collaborator consumed by the services.
type Client interface {
	// Balance returns the current lamport balance of addr.
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)

	// Transfer broadcasts a single-instruction transfer of lamports from the
	// escrow keypair to the recipient, waits for confirmation, and returns
	// the transaction signature as proof.
	Transfer(ctx context.Context, from *keys.Keypair, to solana.PublicKey, lamports uint64) (string, error)

	// RequestAirdrop funds addr from the network faucet (devnet only).
	RequestAirdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) (string, error)

	// Reserve is the minimum balance an account must keep.
	Reserve() uint64
}

// SolToLamports converts a display amount to lamports, flooring fractional
// dust below one lamport.
func SolToLamports(sol float64) uint64 {
	return uint64(math.Floor(sol * float64(LamportsPerSol)))
}

// LamportsToSol converts an on-chain amount to display units.
func LamportsToSol(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSol)
}
