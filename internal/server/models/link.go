package models

import "time"

// LinkStatus enumerates the link lifecycle states. Claimed, expired and
// cancelled are terminal; unfunded is a degraded non-terminal state reached
// when external funding fails at creation time.
type LinkStatus string

const (
	StatusActive    LinkStatus = "active"
	StatusClaimed   LinkStatus = "claimed"
	StatusExpired   LinkStatus = "expired"
	StatusCancelled LinkStatus = "cancelled"
	StatusUnfunded  LinkStatus = "unfunded"
)

// Terminal reports whether no further transition may leave s.
func (s LinkStatus) Terminal() bool {
	switch s {
	case StatusClaimed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s LinkStatus) Valid() bool {
	switch s {
	case StatusActive, StatusClaimed, StatusExpired, StatusCancelled, StatusUnfunded:
		return true
	}
	return false
}

// Link is one custodial escrow account and its metadata. LinkID is the
// public claim-URL slug; EncryptedSecret holds the envelope-encrypted
// escrow private key and is never exposed past the settlement path.
type Link struct {
	ID              string
	LinkID          string
	URL             string
	EscrowPublicKey string
	EncryptedSecret string
	FaceAmount      uint64 // lamports, display value fixed at creation
	Status          LinkStatus
	Memo            string
	Title           string
	CreatorEmail    string
	// Recipient records the claim destination the moment the claimed status
	// commits, so reconciliation knows where a payout was headed even if the
	// broadcast failed afterwards.
	Recipient string
	ExpiresAt *time.Time
	ClaimedAt *time.Time
	CreatedAt time.Time
}

// Expired reports whether the link has a deadline in the past relative to now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
