// This file implements BridgeService, which lets a federated-identity user
// act as a wallet without the key ever leaving the server: identity token in,
// session token out, signatures on demand.
package services

import (
	"context"

	"ziplink/internal/common"
	"ziplink/internal/keys"
	"ziplink/internal/logging"
	"ziplink/internal/server/auth"
	"ziplink/internal/server/config"
	"ziplink/internal/server/sessions"
)

// bridgeTokenHexBytes: 32 random bytes hex-encode to a 64-character token.
const bridgeTokenHexBytes = 32

// ConnectResult returns the bridged wallet identity to the client.
type ConnectResult struct {
	PublicKey    string
	SessionToken string
}

// BridgeService issues signing sessions for identity-provider users. The
// same identity always resolves to the same wallet because the keypair is
// derived deterministically from the subject and the server secret.
type BridgeService struct {
	store          sessions.Store
	logger         logging.Logger
	identitySecret []byte
	serverSecret   []byte
}

func NewBridgeService(store sessions.Store, logger logging.Logger, cfg *config.Config) *BridgeService {
	return &BridgeService{
		store:          store,
		logger:         logger,
		identitySecret: []byte(cfg.IdentitySecret),
		serverSecret:   []byte(cfg.ServerSecret),
	}
}

// Connect verifies the identity token, derives the user's wallet, and opens
// a session. A bad token yields ErrorUnauthorized.
func (s *BridgeService) Connect(ctx context.Context, identityToken string) (*ConnectResult, error) {
	identity, err := auth.VerifyIdentityToken(identityToken, s.identitySecret)
	if err != nil {
		return nil, err
	}

	kp := keys.DeriveDeterministic(identity.Subject, s.serverSecret)

	token, err := common.MakeRandHexString(bridgeTokenHexBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.store.Put(token, &sessions.Session{
		IdentitySubject: identity.Subject,
		Email:           identity.Email,
		Keypair:         kp,
	})

	s.logger.Info(ctx, "bridge session opened", "subject", identity.Subject)
	return &ConnectResult{PublicKey: kp.Address(), SessionToken: token}, nil
}

// SignTransaction signs a serialized transaction payload with the session's
// keypair. Missing or expired sessions yield ErrorUnauthorized.
func (s *BridgeService) SignTransaction(ctx context.Context, token string, payload []byte) ([]byte, error) {
	return s.sign(ctx, token, payload)
}

// SignMessage signs an arbitrary message payload with the session's keypair.
func (s *BridgeService) SignMessage(ctx context.Context, token string, payload []byte) ([]byte, error) {
	return s.sign(ctx, token, payload)
}

func (s *BridgeService) sign(_ context.Context, token string, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, common.ErrInvalidInput
	}
	sess, ok := s.store.Get(token)
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return sess.Keypair.Sign(payload)
}

// Disconnect revokes the session. Unknown tokens are a no-op.
func (s *BridgeService) Disconnect(ctx context.Context, token string) {
	s.store.Delete(token)
}
