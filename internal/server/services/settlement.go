// This file implements SettlementService, the exactly-once claim engine.
// The ordering inside Claim is load-bearing: the conditional status update
// to claimed commits BEFORE any funds move, so two concurrent claims can
// never both broadcast.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"ziplink/internal/chain"
	"ziplink/internal/common"
	"ziplink/internal/cryptox"
	"ziplink/internal/dbx"
	"ziplink/internal/keys"
	"ziplink/internal/logging"
	"ziplink/internal/server/config"
	"ziplink/internal/server/models"
	"ziplink/internal/server/repositories/analytics"
	"ziplink/internal/server/repositories/repomanager"
)

// SettlementResult is the proof returned to a successful claimant.
type SettlementResult struct {
	TxSignature       string
	AmountTransferred uint64
}

// ReconcileOutcome classifies what reconciliation found.
type ReconcileOutcome string

const (
	// ReconcileAlreadySettled: a Claim row exists, nothing to do.
	ReconcileAlreadySettled ReconcileOutcome = "already_settled"
	// ReconcileRebroadcast: escrow still held funds, payout re-sent and recorded.
	ReconcileRebroadcast ReconcileOutcome = "rebroadcast"
	// ReconcileDrained: escrow is empty but no Claim row exists; the original
	// broadcast likely landed without being recorded. Needs operator review.
	ReconcileDrained ReconcileOutcome = "drained"
)

// ReconcileResult reports the reconciliation outcome for a claimed link.
type ReconcileResult struct {
	Outcome           ReconcileOutcome
	TxSignature       string
	AmountTransferred uint64
}

// SettlementService performs claim settlement and post-failure reconciliation.
type SettlementService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	chain        chain.Client
	logger       logging.Logger
	serverSecret []byte
	onSettled    func()
	onFailure    func(code string)
	now          func() time.Time
}

// NewSettlementService constructs a SettlementService. onSettled and
// onFailure are metrics hooks; nil is allowed.
func NewSettlementService(db *sql.DB, m repomanager.RepositoryManager, chainClient chain.Client,
	logger logging.Logger, cfg *config.Config, onSettled func(), onFailure func(code string)) *SettlementService {
	if onSettled == nil {
		onSettled = func() {}
	}
	if onFailure == nil {
		onFailure = func(string) {}
	}
	return &SettlementService{
		db:           db,
		repomanager:  m,
		chain:        chainClient,
		logger:       logger,
		serverSecret: []byte(cfg.ServerSecret),
		onSettled:    onSettled,
		onFailure:    onFailure,
		now:          time.Now,
	}
}

func (s *SettlementService) dbtx() dbx.DBTX {
	if s.db == nil {
		return nil
	}
	return s.db
}

// Claim settles linkID to recipient exactly once.
func (s *SettlementService) Claim(ctx context.Context, linkID, recipient, claimerEmail, claimerName string) (res *SettlementResult, err error) {
	defer func() {
		if err != nil {
			s.onFailure(common.ErrorCode(err))
		}
	}()

	recipientKey, perr := solana.PublicKeyFromBase58(recipient)
	if perr != nil {
		return nil, fmt.Errorf("%w: recipient address: %v", common.ErrInvalidInput, perr)
	}

	link, err := s.lookupClaimable(ctx, linkID)
	if err != nil {
		return nil, err
	}

	escrow, err := s.decryptEscrow(link)
	if err != nil {
		return nil, err
	}
	defer escrow.Wipe()

	balance, err := s.chain.Balance(ctx, escrow.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("error reading escrow balance: %v", err)
	}
	if balance == 0 {
		return nil, common.ErrNoFunds
	}
	if balance <= s.chain.Reserve() {
		return nil, common.ErrInsufficientFunds
	}
	payout := balance - s.chain.Reserve()

	// The CAS. Whoever flips the status owns the payout; everyone else gets
	// AlreadyClaimed and must not broadcast.
	err = s.repomanager.Links(s.dbtx()).MarkClaimedIf(ctx, linkID, link.Status, recipient, s.now())
	if errors.Is(err, common.ErrStatusConflict) {
		return nil, common.ErrAlreadyClaimed
	}
	if err != nil {
		return nil, err
	}

	sig, err := s.chain.Transfer(ctx, escrow, recipientKey, payout)
	if err != nil {
		// Status stays claimed and the recipient is recorded; Reconcile can
		// finish or verify what happened on chain.
		s.logger.Error(ctx, "broadcast failed after claim commit",
			"linkId", linkID, "recipient", recipient, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrBroadcastFailed, err)
	}

	if err := s.recordSettlement(ctx, link, recipient, claimerEmail, claimerName, payout, sig); err != nil {
		// Funds moved but the record write failed; the signature in the log
		// is enough for Reconcile to sort it out.
		s.logger.Error(ctx, "settled but claim record failed",
			"linkId", linkID, "txSignature", sig, "error", err)
		return nil, fmt.Errorf("%w: recording settlement: %v", common.ErrBroadcastFailed, err)
	}

	s.onSettled()
	s.logger.Info(ctx, "claim settled",
		"linkId", linkID, "amount", payout, "txSignature", sig)
	return &SettlementResult{TxSignature: sig, AmountTransferred: payout}, nil
}

// lookupClaimable fetches the link, applies lazy expiry, and rejects
// terminal states. Unfunded links pass through so they fail later with a
// clean NoFunds instead of being silently unclaimable.
func (s *SettlementService) lookupClaimable(ctx context.Context, linkID string) (*models.Link, error) {
	repo := s.repomanager.Links(s.dbtx())

	link, err := repo.GetByLinkID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if link.Status == models.StatusActive && link.Expired(s.now()) {
		uerr := repo.UpdateStatusIf(ctx, linkID, models.StatusActive, models.StatusExpired)
		if uerr != nil && !errors.Is(uerr, common.ErrStatusConflict) {
			return nil, uerr
		}
		link, err = repo.GetByLinkID(ctx, linkID)
		if err != nil {
			return nil, err
		}
	}

	switch link.Status {
	case models.StatusClaimed:
		return nil, common.ErrAlreadyClaimed
	case models.StatusExpired:
		return nil, common.ErrExpired
	case models.StatusCancelled:
		return nil, common.ErrCancelled
	}
	return link, nil
}

// decryptEscrow reconstructs the escrow signing key in memory only.
func (s *SettlementService) decryptEscrow(link *models.Link) (*keys.Keypair, error) {
	secret, err := cryptox.Decrypt(link.EncryptedSecret, s.serverSecret)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)
	return keys.FromSecretBytes(secret)
}

// recordSettlement writes the Claim row and the analytics increment in one
// transaction.
func (s *SettlementService) recordSettlement(ctx context.Context, link *models.Link,
	recipient, claimerEmail, claimerName string, payout uint64, sig string) error {
	return withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		claim := &models.Claim{
			ID:                uuid.NewString(),
			LinkID:            link.LinkID,
			ClaimerAddress:    recipient,
			ClaimerEmail:      claimerEmail,
			ClaimerName:       claimerName,
			AmountTransferred: payout,
			TxSignature:       sig,
		}
		if err := s.repomanager.Claims(tx).Create(ctx, claim); err != nil {
			return err
		}
		return s.repomanager.Analytics(tx).Upsert(ctx, s.now(), claimerEmail,
			analytics.Delta{LinksClaimed: 1})
	})
}

// Reconcile resolves a claimed link that may be missing its settlement. It
// re-checks on-chain state before concluding anything: a balance above the
// reserve means the payout never landed and is re-broadcast to the recorded
// recipient; a drained escrow with no Claim row is surfaced for review.
func (s *SettlementService) Reconcile(ctx context.Context, linkID string) (*ReconcileResult, error) {
	repo := s.repomanager.Links(s.dbtx())

	link, err := repo.GetByLinkID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.Status != models.StatusClaimed {
		return nil, fmt.Errorf("%w: link status is %s, reconcile applies to claimed links",
			common.ErrInvalidInput, link.Status)
	}

	existing, err := s.repomanager.Claims(s.dbtx()).ListByLinkID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &ReconcileResult{
			Outcome:           ReconcileAlreadySettled,
			TxSignature:       existing[0].TxSignature,
			AmountTransferred: existing[0].AmountTransferred,
		}, nil
	}

	if link.Recipient == "" {
		return nil, fmt.Errorf("%w: claimed link has no recorded recipient", common.ErrInvalidInput)
	}
	recipientKey, err := solana.PublicKeyFromBase58(link.Recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: recorded recipient: %v", common.ErrInvalidInput, err)
	}

	escrow, err := s.decryptEscrow(link)
	if err != nil {
		return nil, err
	}
	defer escrow.Wipe()

	balance, err := s.chain.Balance(ctx, escrow.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("error reading escrow balance: %v", err)
	}
	if balance <= s.chain.Reserve() {
		s.logger.Warn(ctx, "reconcile found drained escrow without claim record",
			"linkId", linkID, "balance", balance)
		return &ReconcileResult{Outcome: ReconcileDrained}, nil
	}

	payout := balance - s.chain.Reserve()
	sig, err := s.chain.Transfer(ctx, escrow, recipientKey, payout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBroadcastFailed, err)
	}
	if err := s.recordSettlement(ctx, link, link.Recipient, "", "", payout, sig); err != nil {
		s.logger.Error(ctx, "reconcile settled but claim record failed",
			"linkId", linkID, "txSignature", sig, "error", err)
		return nil, fmt.Errorf("%w: recording settlement: %v", common.ErrBroadcastFailed, err)
	}

	s.onSettled()
	s.logger.Info(ctx, "reconcile re-broadcast payout",
		"linkId", linkID, "amount", payout, "txSignature", sig)
	return &ReconcileResult{Outcome: ReconcileRebroadcast, TxSignature: sig, AmountTransferred: payout}, nil
}
