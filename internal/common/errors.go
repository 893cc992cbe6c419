// Package common defines shared constants and sentinel errors used across
// the ZipLink server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStatusConflict is returned by conditional status updates when the
	// row was not in the expected state. The settlement path translates it
	// into the claim-specific error the caller should see.
	ErrStatusConflict = errors.New("status conflict")

	// Service-level errors (generic flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input validation.
	ErrInvalidInput = errors.New("invalid input")

	// Link lifecycle errors.
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrExpired        = errors.New("link expired")
	ErrCancelled      = errors.New("link cancelled")

	// Settlement errors.
	ErrNoFunds           = errors.New("no funds")
	ErrInsufficientFunds = errors.New("insufficient funds after reserve")
	// ErrBroadcastFailed means the claim status committed but the on-chain
	// transfer did not confirm. The link needs reconciliation, not rollback.
	ErrBroadcastFailed = errors.New("settlement broadcast failed")

	// Envelope crypto errors (authentication failure, fail closed).
	ErrCryptoAuthentication = errors.New("crypto authentication failed")
)

// ErrorCode returns the stable wire code for err, or "Internal" when the
// error is not part of the public taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, ErrorNotFound):
		return "NotFound"
	case errors.Is(err, ErrAlreadyClaimed):
		return "AlreadyClaimed"
	case errors.Is(err, ErrExpired):
		return "Expired"
	case errors.Is(err, ErrCancelled):
		return "Cancelled"
	case errors.Is(err, ErrNoFunds):
		return "NoFunds"
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrBroadcastFailed):
		return "SettlementBroadcastFailed"
	case errors.Is(err, ErrorUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrCryptoAuthentication):
		return "CryptoAuthenticationFailed"
	default:
		return "Internal"
	}
}
