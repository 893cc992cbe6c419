package config

import (
	"flag"
	"os"
	"time"

	"ziplink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-u string   public base URL for claim links
//	-d string   PostgreSQL DSN (empty selects the in-memory store)
//	-s string   envelope-encryption server secret
//	-i string   identity token HMAC secret
//	-t int      session TTL, hours
//	-n string   Solana RPC endpoint
//	-w int      broadcast timeout, seconds
//	-r int      confirmation retries
//	-f bool     fund new links via devnet airdrop
//	-e int      balance cache TTL, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-d", "-s", "-i", "-t", "-n", "-w", "-r", "-f", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.BaseURL, "u", config.BaseURL, "public base URL for claim links")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ServerSecret, "s", config.ServerSecret, "server secret")
	fs.StringVar(&config.IdentitySecret, "i", config.IdentitySecret, "identity token secret")
	fs.StringVar(&config.RPCEndpoint, "n", config.RPCEndpoint, "solana rpc endpoint")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Hours()), "session ttl (in hours)")
	broadcastTimeout := fs.Int("w", int(config.BroadcastTimeout.Seconds()), "broadcast timeout (in seconds)")
	balanceCacheTTL := fs.Int("e", int(config.BalanceCacheTTL.Seconds()), "balance cache ttl (in seconds)")

	fs.IntVar(&config.ConfirmRetries, "r", config.ConfirmRetries, "confirmation retries")
	fs.BoolVar(&config.AirdropEnabled, "f", config.AirdropEnabled, "fund links via devnet airdrop")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Hour
	config.BroadcastTimeout = time.Duration(*broadcastTimeout) * time.Second
	config.BalanceCacheTTL = time.Duration(*balanceCacheTTL) * time.Second
}
