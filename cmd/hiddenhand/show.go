package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/display"
	"github.com/lox/hiddenhand/internal/httpapi"
	"github.com/lox/hiddenhand/internal/projector"
)

// ShowCmd refreshes one table and renders it.
type ShowCmd struct {
	Table string `arg:"" help:"Table name"`
	JSON  bool   `help:"Print the view as JSON"`
}

func (c *ShowCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, closeLog, err := g.logger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	d, err := newDeriver(cfg)
	if err != nil {
		return err
	}
	proj, err := projector.New(projector.Options{
		Fetcher:              fetcher(cfg, logger),
		Deriver:              d,
		Logger:               logger,
		MaxConcurrentFetches: cfg.Projector.MaxConcurrentFetches,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.RPCTimeout())
	defer cancel()
	view, err := proj.RefreshTable(ctx, address.TableIDFromName(c.Table))
	if err != nil {
		return err
	}

	if c.JSON {
		out, err := json.MarshalIndent(httpapi.NewTableResponse(view), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(g.stdout(), string(out))
		return err
	}
	_, err = fmt.Fprint(g.stdout(), display.RenderTable(view))
	return err
}
