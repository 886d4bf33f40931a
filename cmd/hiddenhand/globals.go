package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/config"
	"github.com/lox/hiddenhand/internal/ledger/rpc"
)

// Globals are flags shared by every command.
type Globals struct {
	Config    string `short:"c" default:"hiddenhand.hcl" help:"Path to HCL configuration file"`
	RPC       string `help:"RPC endpoint (overrides config)"`
	Program   string `help:"Program id (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	LogFormat string `help:"Log format: text, json or logfmt (overrides config)"`
	LogFile   string `help:"Write logs to a file instead of stderr"`

	out io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

// load reads the config file and applies flag overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if g.RPC != "" {
		cfg.RPC.URL = g.RPC
	}
	if g.Program != "" {
		cfg.Program = g.Program
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newDeriver builds an address deriver for the configured program.
func newDeriver(cfg *config.Config) (*address.Deriver, error) {
	program, err := cfg.ProgramID()
	if err != nil {
		return nil, err
	}
	return address.NewDeriver(program), nil
}

// logger builds the logger described by cfg. The returned close func
// releases the log file, if any.
func (g *Globals) logger(cfg *config.Config, fallback io.Writer) (*log.Logger, func(), error) {
	w := fallback
	closeFn := func() {}
	if g.LogFile != "" {
		f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	logger, err := newLogger(w, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

func newLogger(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	})
	switch format {
	case "", "text":
		logger.SetFormatter(log.TextFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return logger, nil
}

// fetcher builds the RPC account client.
func fetcher(cfg *config.Config, logger *log.Logger) *rpc.Client {
	return rpc.NewClient(cfg.RPC.URL,
		rpc.WithCommitment(cfg.RPC.Commitment),
		rpc.WithRateLimit(cfg.RPC.RateLimit, cfg.RPC.Burst),
		rpc.WithHTTPClient(&http.Client{Timeout: cfg.RPCTimeout()}),
		rpc.WithLogger(logger))
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
