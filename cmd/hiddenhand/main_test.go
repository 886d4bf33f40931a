package main

import (
	"bytes"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/fileutil"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGlobals(t *testing.T) (*Globals, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &Globals{
		Config: filepath.Join(t.TempDir(), "missing.hcl"),
		out:    &buf,
	}, &buf
}

func TestDeriveCmd(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	hand := uint64(3)
	cmd := &DeriveCmd{Table: "main", Hand: &hand, Seats: 2}
	require.NoError(t, cmd.Run(g))

	d := address.NewDeriver(address.DefaultProgram)
	table, err := d.Table(address.TableIDFromName("main"))
	require.NoError(t, err)
	seat1, err := d.Seat(table, 1, 2)
	require.NoError(t, err)
	handAddr, err := d.Hand(table, 3)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, table.String())
	assert.Contains(t, text, seat1.String())
	assert.Contains(t, text, handAddr.String())
	assert.Contains(t, text, "deck 3")
	assert.NotContains(t, text, "seat 2")
}

func TestDeriveCmdRejectsLongName(t *testing.T) {
	t.Parallel()
	g, _ := testGlobals(t)
	err := (&DeriveCmd{Table: strings.Repeat("x", 33), Seats: 8}).Run(g)
	assert.ErrorContains(t, err, "longer than 32")
}

func TestEvalCmdSingleHand(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	require.NoError(t, (&EvalCmd{Cards: []string{"AhKh", "QhJhTh", "2c3d"}}).Run(g))
	assert.Contains(t, out.String(), "Royal Flush")
}

func TestEvalCmdBoard(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	cmd := &EvalCmd{Cards: []string{"AsAd", "KsKd"}, Board: "2c7h9dJsQc"}
	require.NoError(t, cmd.Run(g))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* As Ad"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  Ks Kd"), lines[1])
	assert.Contains(t, lines[0], "One Pair")
}

func TestEvalCmdPreflop(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	require.NoError(t, (&EvalCmd{Cards: []string{"AsAh"}}).Run(g))
	assert.Contains(t, out.String(), "Premium")
}

func TestInitCmd(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	require.NoError(t, (&InitCmd{Tables: []string{"main"}}).Run(g))
	assert.Contains(t, out.String(), "wrote "+g.Config)

	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, cfg.Tables)

	err = (&InitCmd{}).Run(g)
	assert.ErrorIs(t, err, fileutil.ErrExists)
	require.NoError(t, (&InitCmd{Force: true}).Run(g))
}

func TestEvalCmdDeal(t *testing.T) {
	t.Parallel()
	run := func() string {
		g, out := testGlobals(t)
		require.NoError(t, (&EvalCmd{Deal: 4, Seed: 99}).Run(g))
		return out.String()
	}
	first := run()
	assert.Equal(t, first, run(), "same seed deals the same cards")

	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "board "), lines[0])
	assert.Contains(t, lines[0], "seed 99")
	assert.Contains(t, first, "* ", "at least one winner is marked")

	// Every dealt card is distinct.
	fields := strings.Fields(strings.TrimPrefix(strings.SplitN(lines[0], "  ", 2)[0], "board "))
	for _, line := range lines[1:] {
		f := strings.Fields(strings.TrimLeft(line, "* "))
		fields = append(fields, f[0], f[1])
	}
	require.Len(t, fields, 13)
	seen := map[string]bool{}
	for _, card := range fields {
		assert.False(t, seen[card], "card %s dealt twice", card)
		seen[card] = true
	}
}

func TestEvalCmdDealErrors(t *testing.T) {
	t.Parallel()
	g, _ := testGlobals(t)
	assert.ErrorContains(t, (&EvalCmd{Deal: 1}).Run(g), "between 2 and")
	assert.ErrorContains(t, (&EvalCmd{Deal: 11}).Run(g), "between 2 and")
	assert.ErrorContains(t, (&EvalCmd{Deal: 3, Cards: []string{"AhKh"}}).Run(g), "cannot be combined")
	assert.ErrorContains(t, (&EvalCmd{}).Run(g), "expected cards")
}

func TestEvalCmdErrors(t *testing.T) {
	t.Parallel()
	g, _ := testGlobals(t)
	assert.Error(t, (&EvalCmd{Cards: []string{"AhKhQh"}}).Run(g))
	assert.Error(t, (&EvalCmd{Cards: []string{"AhKhQh"}, Board: "2c3c4c"}).Run(g))
	assert.Error(t, (&EvalCmd{Cards: []string{"ZzKh"}, Board: "2c3c4c"}).Run(g))
}

func TestDecodeCmdAutoDetects(t *testing.T) {
	t.Parallel()
	g, out := testGlobals(t)
	raw, err := layout.Table{
		TableID:        address.TableIDFromName("main"),
		SmallBlind:     5,
		BigBlind:       10,
		MaxPlayers:     6,
		CurrentPlayers: 1,
		OccupiedSeats:  layout.SeatBitmap([]uint8{2}),
	}.MarshalBinary()
	require.NoError(t, err)

	cmd := &DecodeCmd{Kind: "auto", Base64: base64.StdEncoding.EncodeToString(raw)}
	require.NoError(t, cmd.Run(g))
	assert.Contains(t, out.String(), `"kind": "table"`)
	assert.Contains(t, out.String(), `"BigBlind": 10`)
}

func TestDecodeCmdErrors(t *testing.T) {
	t.Parallel()
	g, _ := testGlobals(t)

	err := (&DecodeCmd{Kind: "auto", Base64: base64.StdEncoding.EncodeToString([]byte("garbage!!"))}).Run(g)
	assert.ErrorIs(t, err, layout.ErrDiscriminator)

	err = (&DecodeCmd{Kind: "auto", Base64: "%%%"}).Run(g)
	assert.ErrorContains(t, err, "invalid base64")

	err = (&DecodeCmd{Kind: "auto"}).Run(g)
	assert.ErrorContains(t, err, "required")

	raw, err := layout.Seat{SeatIndex: 1}.MarshalBinary()
	require.NoError(t, err)
	err = (&DecodeCmd{Kind: "table", Base64: base64.StdEncoding.EncodeToString(raw)}).Run(g)
	assert.ErrorIs(t, err, layout.ErrDiscriminator)

	err = (&DecodeCmd{Kind: "seat", Base64: base64.StdEncoding.EncodeToString(raw[:100])}).Run(g)
	assert.ErrorIs(t, err, layout.ErrTruncated)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}
