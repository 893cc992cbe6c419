package models

import "time"

// Claim is one successful settlement event. A link has at most one claim;
// TxSignature is the unique on-chain proof.
type Claim struct {
	ID                string
	LinkID            string
	ClaimerAddress    string
	ClaimerEmail      string
	ClaimerName       string
	AmountTransferred uint64 // lamports
	TxSignature       string
	CreatedAt         time.Time
}
