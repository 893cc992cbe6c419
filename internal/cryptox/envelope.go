// Package cryptox implements the envelope encryption used to keep escrow
// private keys at rest. A symmetric key is derived from the deployment-wide
// server secret with an iteration-hardened KDF and a fresh random salt, and
// the key bytes are sealed with AES-256-GCM.
//
// The blob is self-describing: base64(salt ‖ nonce ‖ authTag ‖ ciphertext),
// so decryption needs no metadata besides the server secret. Rotating the
// server secret invalidates all previously written blobs.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"ziplink/internal/common"
)

const (
	saltSize  = 64
	nonceSize = 16
	tagSize   = 16
	keySize   = 32

	// kdfIterations hardens the server secret against offline guessing if a
	// database dump leaks without the secret.
	kdfIterations = 100_000
)

func deriveKey(serverSecret, salt []byte) []byte {
	return pbkdf2.Key(serverSecret, salt, kdfIterations, keySize, sha512.New)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, nonceSize)
}

// Encrypt seals secret under a key derived from serverSecret and returns the
// serialized blob. A fresh salt and nonce are generated per call, so
// encrypting the same secret twice never yields the same blob.
func Encrypt(secret, serverSecret []byte) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	key := deriveKey(serverSecret, salt)
	defer common.WipeByteArray(key)

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	// Seal appends the auth tag to the ciphertext; the blob layout keeps the
	// tag before the ciphertext, matching the stored format.
	sealed := aead.Seal(nil, nonce, secret, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, saltSize+nonceSize+tagSize+len(ct))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. It fails closed: a wrong server
// secret, a truncated blob, or any tampering yields ErrCryptoAuthentication
// and never partially decoded bytes.
func Decrypt(blob string, serverSecret []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed encoding", common.ErrCryptoAuthentication)
	}
	if len(raw) < saltSize+nonceSize+tagSize {
		return nil, fmt.Errorf("%w: blob too short", common.ErrCryptoAuthentication)
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	tag := raw[saltSize+nonceSize : saltSize+nonceSize+tagSize]
	ct := raw[saltSize+nonceSize+tagSize:]

	key := deriveKey(serverSecret, salt)
	defer common.WipeByteArray(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	secret, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrCryptoAuthentication
	}
	return secret, nil
}
