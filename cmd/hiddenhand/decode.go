package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeCmd decodes one record and prints it as JSON.
type DecodeCmd struct {
	Kind    string `short:"k" enum:"auto,table,hand,seat,deck,hand_completed" default:"auto" help:"Record kind (auto detects from the discriminator)"`
	File    string `short:"f" help:"Read raw bytes from a file ('-' for stdin)" xor:"source"`
	Base64  string `short:"b" help:"Base64-encoded record" xor:"source"`
	Address string `short:"a" help:"Fetch the account at this address" xor:"source"`
}

func (c *DecodeCmd) Run(g *Globals) error {
	data, err := c.read(g)
	if err != nil {
		return err
	}

	kind, err := c.kind(data)
	if err != nil {
		return err
	}
	rec, err := layout.Decode(kind, data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{"kind": kind.String(), "record": rec}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	_, err = fmt.Fprintln(g.stdout(), string(out))
	return err
}

func (c *DecodeCmd) read(g *Globals) ([]byte, error) {
	switch {
	case c.File == "-":
		return io.ReadAll(os.Stdin)
	case c.File != "":
		return os.ReadFile(c.File)
	case c.Base64 != "":
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.Base64))
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return data, nil
	case c.Address != "":
		addr, err := address.Parse(c.Address)
		if err != nil {
			return nil, err
		}
		cfg, err := g.load()
		if err != nil {
			return nil, err
		}
		logger, closeLog, err := g.logger(cfg, os.Stderr)
		if err != nil {
			return nil, err
		}
		defer closeLog()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RPCTimeout())
		defer cancel()
		return fetcher(cfg, logger).Fetch(ctx, addr)
	default:
		return nil, errors.New("one of --file, --base64 or --address is required")
	}
}

func (c *DecodeCmd) kind(data []byte) (layout.Kind, error) {
	if c.Kind != "" && c.Kind != "auto" {
		return layout.ParseKind(c.Kind)
	}
	for _, k := range layout.Kinds() {
		if layout.HasDiscriminator(data, k) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unrecognised discriminator; pass --kind: %w", layout.ErrDiscriminator)
}
