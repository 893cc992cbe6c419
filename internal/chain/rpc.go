package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sethvargo/go-retry"

	"ziplink/internal/keys"
	"ziplink/internal/logging"
)

var errNotConfirmed = errors.New("transaction not confirmed yet")

// RPCClient implements Client over a Solana JSON-RPC endpoint. Every call
// carries a bounded timeout; confirmation is polled with constant backoff.
type RPCClient struct {
	rpc            *rpc.Client
	logger         logging.Logger
	callTimeout    time.Duration
	confirmRetries uint64
	reserve        uint64
}

func NewRPCClient(endpoint string, logger logging.Logger, callTimeout time.Duration, confirmRetries uint64) *RPCClient {
	return &RPCClient{
		rpc:            rpc.New(endpoint),
		logger:         logger.With("module", "chain"),
		callTimeout:    callTimeout,
		confirmRetries: confirmRetries,
		reserve:        DefaultReserve,
	}
}

func (c *RPCClient) Reserve() uint64 {
	return c.reserve
}

func (c *RPCClient) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	out, err := c.rpc.GetBalance(ctx, addr, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("balance query: %w", err)
	}
	return out.Value, nil
}

func (c *RPCClient) Transfer(ctx context.Context, from *keys.Keypair, to solana.PublicKey, lamports uint64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("blockhash query: %w", err)
	}

	ix := system.NewTransferInstruction(lamports, from.PublicKey(), to).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(from.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("transaction build: %w", err)
	}

	priv := from.Private()
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from.PublicKey()) {
			return &priv
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("transaction sign: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}

	c.logger.Info(ctx, "transfer broadcast", "signature", sig.String(), "lamports", lamports)

	if err := c.awaitConfirmation(ctx, sig); err != nil {
		// The signature is returned even on confirmation timeout: the
		// transfer may still land, and reconciliation needs the proof.
		return sig.String(), err
	}
	return sig.String(), nil
}

func (c *RPCClient) RequestAirdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	sig, err := c.rpc.RequestAirdrop(ctx, addr, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("airdrop: %w", err)
	}
	if err := c.awaitConfirmation(ctx, sig); err != nil {
		return sig.String(), err
	}
	return sig.String(), nil
}

// awaitConfirmation polls signature status until the transaction reaches
// confirmed commitment or the retry budget is exhausted.
func (c *RPCClient) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	backoff := retry.WithMaxRetries(c.confirmRetries, retry.NewConstant(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			return retry.RetryableError(errNotConfirmed)
		}
		st := out.Value[0]
		if st.Err != nil {
			return fmt.Errorf("transaction failed on chain: %v", st.Err)
		}
		switch st.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		default:
			return retry.RetryableError(errNotConfirmed)
		}
	})
}
