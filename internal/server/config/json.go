package config

import (
	"encoding/json"
	"os"
	"time"

	"ziplink/internal/flagx"
	"ziplink/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	BaseURL          string         `json:"base_url"`
	DatabaseDSN      string         `json:"database_dsn"`
	ServerSecret     string         `json:"server_secret"`
	IdentitySecret   string         `json:"identity_secret"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	RPCEndpoint      string         `json:"rpc_endpoint"`
	BroadcastTimeout timex.Duration `json:"broadcast_timeout"`
	ConfirmRetries   int            `json:"confirm_retries"`
	AirdropEnabled   bool           `json:"airdrop_enabled"`
	BalanceCacheTTL  timex.Duration `json:"balance_cache_ttl"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. An unreadable file or
// invalid JSON panics, startup must not continue on a half-applied config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.BaseURL = c.BaseURL
	config.DatabaseDSN = c.DatabaseDSN
	config.ServerSecret = c.ServerSecret
	config.IdentitySecret = c.IdentitySecret
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.RPCEndpoint = c.RPCEndpoint
	config.BroadcastTimeout = time.Duration(c.BroadcastTimeout.Duration)
	config.ConfirmRetries = c.ConfirmRetries
	config.AirdropEnabled = c.AirdropEnabled
	config.BalanceCacheTTL = time.Duration(c.BalanceCacheTTL.Duration)
}
