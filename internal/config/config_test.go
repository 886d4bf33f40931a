package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hiddenhand.hcl")
	src := `
tables = ["main", "high-stakes"]

rpc {
  url        = "http://localhost:8899"
  commitment = "finalized"
  rate_limit = 2.5
}

projector {
  poll_interval_ms = 500
  subscribe        = false
}

relay {
  nats_url = "nats://localhost:4222"
}

http {
  listen = ":9090"
}

log {
  level  = "debug"
  format = "json"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"main", "high-stakes"}, cfg.Tables)
	assert.Equal(t, "http://localhost:8899", cfg.RPC.URL)
	assert.Equal(t, "finalized", cfg.RPC.Commitment)
	assert.Equal(t, 2.5, cfg.RPC.RateLimit)
	assert.Equal(t, 5, cfg.RPC.Burst, "unset values keep defaults")
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.ResubscribeDelay())
	assert.False(t, cfg.Projector.Subscribe)
	assert.Equal(t, 50, cfg.Projector.HistoryCapacity)
	assert.Equal(t, "nats://localhost:4222", cfg.Relay.NatsURL)
	assert.Equal(t, "hiddenhand", cfg.Relay.Prefix)
	assert.Equal(t, ":9090", cfg.HTTP.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	ws, err := cfg.WebsocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8899", ws)

	program, err := cfg.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, address.DefaultProgram, program)
}

func TestParseRejectsBadHCL(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"syntax":        `rpc {`,
		"unknown block": `mystery {}`,
		"wrong type":    `tables = 7`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad program", func(c *Config) { c.Program = "not-base58-0OIl" }, "invalid program id"},
		{"empty table", func(c *Config) { c.Tables = []string{""} }, "must not be empty"},
		{"long table", func(c *Config) { c.Tables = []string{"abcdefghijklmnopqrstuvwxyz0123456789"} }, "longer than 32"},
		{"no url", func(c *Config) { c.RPC.URL = "" }, "rpc url is required"},
		{"bad scheme", func(c *Config) { c.RPC.URL = "ftp://node" }, "unsupported endpoint scheme"},
		{"commitment", func(c *Config) { c.RPC.Commitment = "eventually" }, "invalid commitment"},
		{"negative rate", func(c *Config) { c.RPC.RateLimit = -1 }, "rate limit"},
		{"poll interval", func(c *Config) { c.Projector.PollIntervalMs = 0 }, "poll interval"},
		{"history", func(c *Config) { c.Projector.HistoryCapacity = -4 }, "history capacity"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestExplicitWebsocketURL(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.RPC.WSURL = "wss://stream.example"
	ws, err := cfg.WebsocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://stream.example", ws)
}

func TestEncodeRoundTrips(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Tables = []string{"main", "high-stakes"}
	cfg.Projector.Subscribe = false
	cfg.Relay.NatsURL = "nats://localhost:4222"
	cfg.HTTP.Listen = ":9090"

	src := cfg.Encode()
	assert.Contains(t, string(src), "projector {")

	parsed, err := Parse(src, "encoded.hcl")
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestEncodeDefaultsHasNoTables(t *testing.T) {
	t.Parallel()
	parsed, err := Parse(DefaultConfig().Encode(), "defaults.hcl")
	require.NoError(t, err)
	assert.Empty(t, parsed.Tables)
	assert.NoError(t, parsed.Validate())
}
