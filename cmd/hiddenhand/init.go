package main

import (
	"fmt"

	"github.com/lox/hiddenhand/internal/config"
	"github.com/lox/hiddenhand/internal/fileutil"
)

// InitCmd writes a starter configuration file.
type InitCmd struct {
	Tables []string `arg:"" optional:"" help:"Tables to watch by default"`
	Force  bool     `help:"Overwrite an existing file"`
}

func (c *InitCmd) Run(g *Globals) error {
	cfg := config.DefaultConfig()
	cfg.Tables = c.Tables
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := fileutil.WriteFile(g.Config, cfg.Encode(), 0o644, c.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.stdout(), "wrote %s\n", g.Config)
	return err
}
