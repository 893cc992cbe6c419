// Package services contains server-side business logic. This file implements
// LinkService, which mints claim links: escrow key generation, envelope
// encryption of the secret, persistence, and funding of the escrow account.
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

// maxFaceAmountSol bounds a single link's nominal value.
const maxFaceAmountSol = 1_000_000

// linkIDHexBytes: 5 random bytes hex-encode to a 10-character URL slug.
const linkIDHexBytes = 5

// CreateLinkParams carries the creation request.
type CreateLinkParams struct {
	AmountSol      float64
	Memo           string
	Title          string
	ExpiresInHours int
	CreatorEmail   string
	// FundingSecret is an optional base58 private key of the wallet paying
	// for the escrow. When empty and airdrop is enabled the devnet faucet
	// funds the link instead.
	FundingSecret string
}

// CreateLinkResult is returned to the creator.
type CreateLinkResult struct {
	LinkID          string
	URL             string
	EscrowPublicKey string
	Status          models.LinkStatus
	ExpiresAt       *time.Time
}

// LinkDetails is the full read-side view of a link.
type LinkDetails struct {
	Link           *models.Link
	CurrentBalance uint64
	Claims         []*models.Claim
}

// ListResult pages links for the admin surface.
type ListResult struct {
	Links []*models.Link
	Total int64
}

// LinkService owns the link lifecycle up to the claim: creation, reads with
// lazy expiry, cancellation, and admin listing.
type LinkService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	chain          chain.Client
	logger         logging.Logger
	serverSecret   []byte
	baseURL        string
	airdropEnabled bool
	onCreated      func()
	now            func() time.Time
}

// NewLinkService constructs a LinkService using repositories and server config.
// onCreated is invoked after each successful creation (metrics hook); nil is
// allowed.
func NewLinkService(db *sql.DB, m repomanager.RepositoryManager, chainClient chain.Client,
	logger logging.Logger, cfg *config.Config, onCreated func()) *LinkService {
	if onCreated == nil {
		onCreated = func() {}
	}
	return &LinkService{
		db:             db,
		repomanager:    m,
		chain:          chainClient,
		logger:         logger,
		serverSecret:   []byte(cfg.ServerSecret),
		baseURL:        cfg.BaseURL,
		airdropEnabled: cfg.AirdropEnabled,
		onCreated:      onCreated,
		now:            time.Now,
	}
}

// withTx runs fn inside a database transaction when a database is configured,
// and directly against the in-memory repositories otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// Create mints a new claim link. The escrow secret exists in plaintext only
// inside this call; what is persisted is the envelope ciphertext. A funding
// failure leaves the link in the explicit unfunded status rather than
// pretending success.
func (s *LinkService) Create(ctx context.Context, p CreateLinkParams) (*CreateLinkResult, error) {
	if p.AmountSol <= 0 || p.AmountSol > maxFaceAmountSol {
		return nil, fmt.Errorf("%w: amount must be in (0, %d] SOL", common.ErrInvalidInput, maxFaceAmountSol)
	}
	lamports := chain.SolToLamports(p.AmountSol)

	linkID, err := common.MakeRandHexString(linkIDHexBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	kp, err := keys.Generate()
	if err != nil {
		return nil, common.ErrorInternal
	}
	secret := kp.SecretBytes()
	blob, err := cryptox.Encrypt(secret, s.serverSecret)
	common.WipeByteArray(secret)
	if err != nil {
		return nil, fmt.Errorf("error encrypting escrow secret: %v", err)
	}

	var expiresAt *time.Time
	if p.ExpiresInHours > 0 {
		t := s.now().Add(time.Duration(p.ExpiresInHours) * time.Hour)
		expiresAt = &t
	}

	link := &models.Link{
		ID:              uuid.NewString(),
		LinkID:          linkID,
		URL:             fmt.Sprintf("%s/claim/%s", s.baseURL, linkID),
		EscrowPublicKey: kp.Address(),
		EncryptedSecret: blob,
		FaceAmount:      lamports,
		Status:          models.StatusActive,
		Memo:            p.Memo,
		Title:           p.Title,
		CreatorEmail:    p.CreatorEmail,
		ExpiresAt:       expiresAt,
	}

	if err := withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Links(tx).Create(ctx, link); err != nil {
			return fmt.Errorf("error creating link: %v", err)
		}
		return s.repomanager.Analytics(tx).Upsert(ctx, s.now(), p.CreatorEmail,
			analytics.Delta{LinksCreated: 1, AmountCreated: lamports})
	}); err != nil {
		return nil, err
	}
	s.onCreated()

	status := models.StatusActive
	if err := s.fund(ctx, kp.PublicKey(), lamports, p.FundingSecret); err != nil {
		s.logger.Warn(ctx, "link funding failed", "linkId", linkID, "error", err)
		if err := s.repomanager.Links(s.dbtx()).UpdateStatusIf(ctx, linkID,
			models.StatusActive, models.StatusUnfunded); err != nil {
			return nil, fmt.Errorf("error marking link unfunded: %v", err)
		}
		status = models.StatusUnfunded
	}

	s.logger.Info(ctx, "link created", "linkId", linkID, "status", string(status))
	return &CreateLinkResult{
		LinkID:          linkID,
		URL:             link.URL,
		EscrowPublicKey: link.EscrowPublicKey,
		Status:          status,
		ExpiresAt:       expiresAt,
	}, nil
}

// fund moves the face amount plus the network reserve into the escrow so the
// eventual payout equals the face amount.
func (s *LinkService) fund(ctx context.Context, escrow solana.PublicKey, lamports uint64, fundingSecret string) error {
	total := lamports + s.chain.Reserve()

	if fundingSecret != "" {
		funder, err := keys.FromBase58(fundingSecret)
		if err != nil {
			return err
		}
		defer funder.Wipe()
		_, err = s.chain.Transfer(ctx, funder, escrow, total)
		return err
	}
	if s.airdropEnabled {
		_, err := s.chain.RequestAirdrop(ctx, escrow, total)
		return err
	}
	return errors.New("no funding source configured")
}

// dbtx adapts the optional *sql.DB to the DBTX parameter repositories expect.
func (s *LinkService) dbtx() dbx.DBTX {
	if s.db == nil {
		return nil
	}
	return s.db
}

// Get returns the link with its current balance and claim history. Reading an
// active link past its deadline flips it to expired first, so callers never
// observe a stale active status.
func (s *LinkService) Get(ctx context.Context, linkID string) (*LinkDetails, error) {
	link, err := s.expireLazily(ctx, linkID)
	if err != nil {
		return nil, err
	}

	var balance uint64
	addr, err := solana.PublicKeyFromBase58(link.EscrowPublicKey)
	if err == nil {
		balance, err = s.chain.Balance(ctx, addr)
		if err != nil {
			s.logger.Warn(ctx, "balance read failed", "linkId", linkID, "error", err)
			balance = 0
		}
	}

	claimList, err := s.repomanager.Claims(s.dbtx()).ListByLinkID(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("error listing claims: %v", err)
	}

	return &LinkDetails{Link: link, CurrentBalance: balance, Claims: claimList}, nil
}

// expireLazily fetches a link and applies the deadline transition if due.
func (s *LinkService) expireLazily(ctx context.Context, linkID string) (*models.Link, error) {
	repo := s.repomanager.Links(s.dbtx())

	link, err := repo.GetByLinkID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.Status != models.StatusActive || !link.Expired(s.now()) {
		return link, nil
	}

	err = repo.UpdateStatusIf(ctx, linkID, models.StatusActive, models.StatusExpired)
	if err != nil && !errors.Is(err, common.ErrStatusConflict) {
		return nil, err
	}
	// a concurrent transition won; re-read either way for the settled status
	return repo.GetByLinkID(ctx, linkID)
}

// Cancel moves a link to cancelled. Only active and unfunded links may be
// cancelled; terminal links yield their matching domain error.
func (s *LinkService) Cancel(ctx context.Context, linkID string) error {
	link, err := s.expireLazily(ctx, linkID)
	if err != nil {
		return err
	}

	switch link.Status {
	case models.StatusClaimed:
		return common.ErrAlreadyClaimed
	case models.StatusExpired:
		return common.ErrExpired
	case models.StatusCancelled:
		return common.ErrCancelled
	}

	err = s.repomanager.Links(s.dbtx()).UpdateStatusIf(ctx, linkID, link.Status, models.StatusCancelled)
	if errors.Is(err, common.ErrStatusConflict) {
		// lost a race with a claim or another cancel; report what won
		settled, gerr := s.repomanager.Links(s.dbtx()).GetByLinkID(ctx, linkID)
		if gerr != nil {
			return gerr
		}
		return statusError(settled.Status)
	}
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "link cancelled", "linkId", linkID)
	return nil
}

// statusError maps a terminal status to its domain error.
func statusError(status models.LinkStatus) error {
	switch status {
	case models.StatusClaimed:
		return common.ErrAlreadyClaimed
	case models.StatusExpired:
		return common.ErrExpired
	case models.StatusCancelled:
		return common.ErrCancelled
	default:
		return common.ErrStatusConflict
	}
}

// List pages links for the admin surface. An empty status matches all.
func (s *LinkService) List(ctx context.Context, status string, page, limit int) (*ListResult, error) {
	st := models.LinkStatus(status)
	if status != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, status)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	repo := s.repomanager.Links(s.dbtx())
	items, err := repo.List(ctx, st, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("error listing links: %v", err)
	}
	total, err := repo.Count(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("error counting links: %v", err)
	}
	return &ListResult{Links: items, Total: total}, nil
}
