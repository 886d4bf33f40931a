package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/config"
	"github.com/lox/hiddenhand/internal/display"
	"github.com/lox/hiddenhand/internal/httpapi"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/ledger/rpc"
	"github.com/lox/hiddenhand/internal/projector"
	"github.com/lox/hiddenhand/internal/relay"
	"github.com/lox/hiddenhand/internal/tui"
)

// WatchCmd follows tables until interrupted.
type WatchCmd struct {
	Tables      []string `arg:"" optional:"" help:"Table names (defaults to the config's tables)"`
	TUI         bool     `help:"Show a live terminal view"`
	NoSubscribe bool     `help:"Poll only; do not subscribe to program logs"`
	Listen      string   `help:"Serve status and metrics on this address (overrides config)"`
	Nats        string   `help:"Relay completed hands to this NATS server (overrides config)"`
}

func (c *WatchCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	tables := c.Tables
	if len(tables) == 0 {
		tables = cfg.Tables
	}
	if len(tables) == 0 {
		return errors.New("no tables to watch; pass table names or set tables in the config")
	}
	ids := make([]address.TableID, 0, len(tables))
	for _, name := range tables {
		if len(name) > address.TableIDSize {
			return fmt.Errorf("table name %q is longer than %d bytes", name, address.TableIDSize)
		}
		ids = append(ids, address.TableIDFromName(name))
	}
	if c.Listen != "" {
		cfg.HTTP.Listen = c.Listen
	}
	if c.Nats != "" {
		cfg.Relay.NatsURL = c.Nats
	}
	if c.NoSubscribe {
		cfg.Projector.Subscribe = false
	}

	// The TUI owns the terminal, so logs go to the log file or nowhere.
	var fallback io.Writer = os.Stderr
	if c.TUI {
		fallback = io.Discard
	}
	logger, closeLog, err := g.logger(cfg, fallback)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(logger)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	d, err := newDeriver(cfg)
	if err != nil {
		return err
	}
	opts := projector.Options{
		Fetcher:              fetcher(cfg, logger),
		Deriver:              d,
		Logger:               logger,
		Registerer:           reg,
		Tables:               ids,
		PollInterval:         cfg.PollInterval(),
		ResubscribeDelay:     cfg.ResubscribeDelay(),
		HistoryCapacity:      cfg.Projector.HistoryCapacity,
		MaxConcurrentFetches: cfg.Projector.MaxConcurrentFetches,
	}
	if cfg.Projector.Subscribe {
		ws, err := cfg.WebsocketURL()
		if err != nil {
			return err
		}
		opts.Subscriber = rpc.NewSubscriber(ws, logger)
	}

	var hooks []func(layout.HandCompleted)
	if cfg.Relay.NatsURL != "" {
		nc, err := relay.Connect(cfg.Relay.NatsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		r, err := relay.New(nc, relay.WithPrefix(cfg.Relay.Prefix), relay.WithLogger(logger))
		if err != nil {
			return err
		}
		hooks = append(hooks, r.HandCompleted)
	}

	var program *tea.Program
	if c.TUI {
		program = tea.NewProgram(tui.NewModel(tables, logger), tea.WithAltScreen(), tea.WithContext(ctx))
		onPublish, onHand := tui.Hooks(program)
		opts.OnPublish = onPublish
		hooks = append(hooks, onHand)
	} else {
		out := g.stdout()
		opts.OnPublish = func(v *projector.GameView) {
			logger.Debug("View published", "table", v.Name(), "hand", v.Table.HandNumber, "generation", v.Generation)
		}
		hooks = append(hooks, func(ev layout.HandCompleted) {
			fmt.Fprintln(out, strings.TrimRight(display.RenderHand(ev), "\n"))
		})
	}
	opts.OnHandCompleted = func(ev layout.HandCompleted) {
		for _, h := range hooks {
			h(ev)
		}
	}

	proj, err := projector.New(opts)
	if err != nil {
		return err
	}

	errc := make(chan error, 2)
	if cfg.HTTP.Listen != "" {
		srv := httpapi.New(proj, reg, logger)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTP.Listen); err != nil {
				errc <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	if err := proj.Start(ctx); err != nil {
		return err
	}
	defer proj.Stop()

	logWatching(logger, cfg, tables)

	if program != nil {
		go func() {
			_, err := program.Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				errc <- fmt.Errorf("tui: %w", err)
			}
			cancel()
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		return nil
	case err := <-errc:
		return err
	}
}

func logWatching(logger *log.Logger, cfg *config.Config, tables []string) {
	logger.Info("Watching tables",
		"tables", strings.Join(tables, ","),
		"rpc", cfg.RPC.URL,
		"subscribe", cfg.Projector.Subscribe,
		"relay", cfg.Relay.NatsURL != "",
		"http", cfg.HTTP.Listen)
}
