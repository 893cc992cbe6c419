// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the ziplink server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - BaseURL: public URL prefix used to build shareable claim links.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty DSN selects the in-memory store.
//   - ServerSecret: envelope-encryption secret for escrow keys and the
//     entropy source for bridged-wallet derivation. Never log it.
//   - IdentitySecret: HMAC secret for verifying identity tokens (HS256).
//   - SessionTTL: wallet bridge session lifetime.
//   - RPCEndpoint: Solana JSON-RPC endpoint.
//   - BroadcastTimeout: upper bound on a single broadcast attempt.
//   - ConfirmRetries: confirmation poll attempts after broadcast.
//   - AirdropEnabled: fund new links via devnet airdrop instead of a transfer.
//   - BalanceCacheTTL: how long chain balance reads may be served from cache.
type Config struct {
	EndpointAddr     string
	BaseURL          string
	DatabaseDSN      string
	ServerSecret     string
	IdentitySecret   string
	SessionTTL       time.Duration
	RPCEndpoint      string
	BroadcastTimeout time.Duration
	ConfirmRetries   int
	AirdropEnabled   bool
	BalanceCacheTTL  time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.BaseURL = "http://localhost:8080"
	c.DatabaseDSN = ""
	c.ServerSecret = "devServerSecret"
	c.IdentitySecret = "devIdentitySecret"
	c.SessionTTL = 24 * time.Hour
	c.RPCEndpoint = "https://api.devnet.solana.com"
	c.BroadcastTimeout = 30 * time.Second
	c.ConfirmRetries = 20
	c.AirdropEnabled = true
	c.BalanceCacheTTL = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
