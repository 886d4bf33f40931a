// Package config loads the watcher configuration from HCL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/ledger/rpc"
)

// Config is the complete watcher configuration.
type Config struct {
	Program   string
	Tables    []string
	RPC       RPCSettings
	Projector ProjectorSettings
	Relay     RelaySettings
	HTTP      HTTPSettings
	Log       LogSettings
}

// RPCSettings configures the ledger node connection.
type RPCSettings struct {
	URL        string  `hcl:"url,optional"`
	WSURL      string  `hcl:"ws_url,optional"`
	Commitment string  `hcl:"commitment,optional"`
	RateLimit  float64 `hcl:"rate_limit,optional"`
	Burst      int     `hcl:"burst,optional"`
	TimeoutMs  int     `hcl:"timeout_ms,optional"`
}

// ProjectorSettings configures polling, subscription and history.
type ProjectorSettings struct {
	PollIntervalMs       int  `hcl:"poll_interval_ms,optional"`
	ResubscribeDelayMs   int  `hcl:"resubscribe_delay_ms,optional"`
	Subscribe            bool `hcl:"subscribe,optional"`
	HistoryCapacity      int  `hcl:"history_capacity,optional"`
	MaxConcurrentFetches int  `hcl:"max_concurrent_fetches,optional"`
}

// RelaySettings configures the NATS relay. An empty URL disables it.
type RelaySettings struct {
	NatsURL string `hcl:"nats_url,optional"`
	Prefix  string `hcl:"prefix,optional"`
}

// HTTPSettings configures the status and metrics listener. An empty Listen
// disables it.
type HTTPSettings struct {
	Listen string `hcl:"listen,optional"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// file mirrors the HCL layout. Blocks are pointers so each is optional.
type file struct {
	Program   string             `hcl:"program,optional"`
	Tables    []string           `hcl:"tables,optional"`
	RPC       *RPCSettings       `hcl:"rpc,block"`
	Projector *ProjectorSettings `hcl:"projector,block"`
	Relay     *RelaySettings     `hcl:"relay,block"`
	HTTP      *HTTPSettings      `hcl:"http,block"`
	Log       *LogSettings       `hcl:"log,block"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Program: address.DefaultProgram.String(),
		RPC: RPCSettings{
			URL:        "https://api.devnet.solana.com",
			Commitment: rpc.CommitmentConfirmed,
			RateLimit:  10,
			Burst:      5,
			TimeoutMs:  10000,
		},
		Projector: ProjectorSettings{
			PollIntervalMs:       2000,
			ResubscribeDelayMs:   5000,
			Subscribe:            true,
			HistoryCapacity:      50,
			MaxConcurrentFetches: 8,
		},
		Relay: RelaySettings{
			Prefix: "hiddenhand",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults for anything it leaves out.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultConfig()
	if raw.Program != "" {
		config.Program = raw.Program
	}
	config.Tables = raw.Tables

	if r := raw.RPC; r != nil {
		if r.URL != "" {
			config.RPC.URL = r.URL
		}
		config.RPC.WSURL = r.WSURL
		if r.Commitment != "" {
			config.RPC.Commitment = r.Commitment
		}
		if r.RateLimit != 0 {
			config.RPC.RateLimit = r.RateLimit
		}
		if r.Burst != 0 {
			config.RPC.Burst = r.Burst
		}
		if r.TimeoutMs != 0 {
			config.RPC.TimeoutMs = r.TimeoutMs
		}
	}

	if p := raw.Projector; p != nil {
		if p.PollIntervalMs != 0 {
			config.Projector.PollIntervalMs = p.PollIntervalMs
		}
		if p.ResubscribeDelayMs != 0 {
			config.Projector.ResubscribeDelayMs = p.ResubscribeDelayMs
		}
		// A present projector block states subscribe explicitly.
		config.Projector.Subscribe = p.Subscribe
		if p.HistoryCapacity != 0 {
			config.Projector.HistoryCapacity = p.HistoryCapacity
		}
		if p.MaxConcurrentFetches != 0 {
			config.Projector.MaxConcurrentFetches = p.MaxConcurrentFetches
		}
	}

	if r := raw.Relay; r != nil {
		config.Relay.NatsURL = r.NatsURL
		if r.Prefix != "" {
			config.Relay.Prefix = r.Prefix
		}
	}

	if h := raw.HTTP; h != nil {
		config.HTTP.Listen = h.Listen
	}

	if l := raw.Log; l != nil {
		if l.Level != "" {
			config.Log.Level = l.Level
		}
		if l.Format != "" {
			config.Log.Format = l.Format
		}
	}

	return config, nil
}

// Encode renders the configuration as HCL that Parse reads back unchanged.
func (c *Config) Encode() []byte {
	rpcSettings, projector, relay, http, logSettings := c.RPC, c.Projector, c.Relay, c.HTTP, c.Log
	tables := c.Tables
	if tables == nil {
		tables = []string{}
	}
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(&file{
		Program:   c.Program,
		Tables:    tables,
		RPC:       &rpcSettings,
		Projector: &projector,
		Relay:     &relay,
		HTTP:      &http,
		Log:       &logSettings,
	}, f.Body())
	return hclwrite.Format(f.Bytes())
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := address.Parse(c.Program); err != nil {
		return fmt.Errorf("invalid program id: %w", err)
	}
	for _, name := range c.Tables {
		if name == "" {
			return fmt.Errorf("table names must not be empty")
		}
		if len(name) > address.TableIDSize {
			return fmt.Errorf("table name %q is longer than %d bytes", name, address.TableIDSize)
		}
	}

	if c.RPC.URL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if _, err := c.WebsocketURL(); err != nil {
		return err
	}
	switch c.RPC.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", c.RPC.Commitment)
	}
	if c.RPC.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RPC.TimeoutMs <= 0 {
		return fmt.Errorf("rpc timeout must be positive")
	}

	if c.Projector.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Projector.ResubscribeDelayMs <= 0 {
		return fmt.Errorf("resubscribe delay must be positive")
	}
	if c.Projector.HistoryCapacity <= 0 {
		return fmt.Errorf("history capacity must be positive")
	}
	if c.Projector.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("max concurrent fetches must be positive")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	return nil
}

// ProgramID returns the parsed program id.
func (c *Config) ProgramID() (address.Address, error) {
	return address.Parse(c.Program)
}

// WebsocketURL returns the configured websocket endpoint, or one derived
// from the RPC URL.
func (c *Config) WebsocketURL() (string, error) {
	if c.RPC.WSURL != "" {
		return c.RPC.WSURL, nil
	}
	return rpc.WebsocketURL(c.RPC.URL)
}

// RPCTimeout is the per-request timeout.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPC.TimeoutMs) * time.Millisecond
}

// PollInterval is the per-table refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Projector.PollIntervalMs) * time.Millisecond
}

// ResubscribeDelay is the wait before re-opening a dropped event stream.
func (c *Config) ResubscribeDelay() time.Duration {
	return time.Duration(c.Projector.ResubscribeDelayMs) * time.Millisecond
}
