// Package keys implements the escrow account factory: fresh keypairs for
// newly minted links, and deterministic keypairs for identity-bridged
// wallets, both over ed25519 as the settlement network requires.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"ziplink/internal/common"
)

// Keypair wraps an ed25519 escrow signing key. The secret bytes stay inside
// this process; callers persist them only through the cryptox envelope.
type Keypair struct {
	priv solana.PrivateKey
}

// Generate creates a fresh random escrow keypair.
func Generate() (*Keypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("keypair generation: %w", err)
	}
	return &Keypair{priv: priv}, nil
}

// DeriveDeterministic maps a federated-identity subject to a keypair.
// The seed is SHA-256(subject ‖ serverSecret), so the same identity always
// resolves to the same on-chain address while distinct identities collide
// with negligible probability. Pure function of its inputs.
func DeriveDeterministic(identitySubject string, serverSecret []byte) *Keypair {
	h := sha256.New()
	h.Write([]byte(identitySubject))
	h.Write(serverSecret)
	seed := h.Sum(nil)

	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{priv: solana.PrivateKey(priv)}
}

// FromBase58 parses a base58-encoded private key, the format wallets export.
func FromBase58(s string) (*Keypair, error) {
	priv, err := solana.PrivateKeyFromBase58(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return &Keypair{priv: priv}, nil
}

// FromSecretBytes reconstructs a keypair from decrypted envelope contents.
func FromSecretBytes(b []byte) (*Keypair, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: secret key must be %d bytes, got %d",
			common.ErrInvalidInput, ed25519.PrivateKeySize, len(b))
	}
	priv := make(solana.PrivateKey, len(b))
	copy(priv, b)
	return &Keypair{priv: priv}, nil
}

// PublicKey returns the on-chain public key.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.priv.PublicKey()
}

// Address returns the base58 form of the public key, the value stored on the
// Link row and shown to users.
func (k *Keypair) Address() string {
	return k.priv.PublicKey().String()
}

// SecretBytes exposes the raw private key for envelope encryption. The
// caller owns wiping the returned slice.
func (k *Keypair) SecretBytes() []byte {
	out := make([]byte, len(k.priv))
	copy(out, k.priv)
	return out
}

// Private returns the underlying signing key for transaction building.
func (k *Keypair) Private() solana.PrivateKey {
	return k.priv
}

// Sign produces a detached ed25519 signature over msg.
func (k *Keypair) Sign(msg []byte) ([]byte, error) {
	sig, err := k.priv.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

// Wipe zeroes the private key material.
func (k *Keypair) Wipe() {
	common.WipeByteArray(k.priv)
}

// ValidateAddress reports whether s parses as a settlement-network address.
func ValidateAddress(s string) error {
	if _, err := solana.PublicKeyFromBase58(s); err != nil {
		return fmt.Errorf("%w: invalid address %q", common.ErrInvalidInput, s)
	}
	return nil
}
