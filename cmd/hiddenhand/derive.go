package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
)

// DeriveCmd prints the addresses of a table's accounts.
type DeriveCmd struct {
	Table string  `arg:"" help:"Table name"`
	Hand  *uint64 `help:"Also derive the hand and deck accounts of this hand number"`
	Seats uint8   `default:"8" help:"Number of seat addresses to print"`
}

func (c *DeriveCmd) Run(g *Globals) error {
	if len(c.Table) > address.TableIDSize {
		return fmt.Errorf("table name %q is longer than %d bytes", c.Table, address.TableIDSize)
	}
	if c.Seats > layout.MaxSeats {
		return fmt.Errorf("at most %d seats", layout.MaxSeats)
	}
	cfg, err := g.load()
	if err != nil {
		return err
	}
	d, err := newDeriver(cfg)
	if err != nil {
		return err
	}

	id := address.TableIDFromName(c.Table)
	table, err := d.Table(id)
	if err != nil {
		return err
	}
	vault, err := d.Vault(table)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "program\t%s\n", d.Program())
	fmt.Fprintf(w, "table\t%s\n", table)
	fmt.Fprintf(w, "vault\t%s\n", vault)
	for i := uint8(0); i < c.Seats; i++ {
		seat, err := d.Seat(table, i, c.Seats)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "seat %d\t%s\n", i, seat)
	}
	if c.Hand != nil {
		hand, err := d.Hand(table, *c.Hand)
		if err != nil {
			return err
		}
		deck, err := d.Deck(table, *c.Hand)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "hand %d\t%s\n", *c.Hand, hand)
		fmt.Fprintf(w, "deck %d\t%s\n", *c.Hand, deck)
	}
	return w.Flush()
}
