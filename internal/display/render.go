// Package display renders projected tables and completed hands as styled
// terminal text.
package display

import (
	"fmt"
	"strings"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/projector"
	"github.com/lox/hiddenhand/poker"
)

// FormatCard renders one card, red suits in red and hidden cards dimmed.
func FormatCard(c poker.Card) string {
	switch {
	case !c.Valid():
		return HiddenCardStyle.Render(c.String())
	case c.Suit() == poker.Hearts || c.Suit() == poker.Diamonds:
		return RedCardStyle.Render(c.String())
	default:
		return BlackCardStyle.Render(c.String())
	}
}

// FormatCards renders cards as "[Ah Kd]".
func FormatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		formatted = append(formatted, FormatCard(c))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// ShortAddress abbreviates an address to its first and last four characters.
func ShortAddress(a address.Address) string {
	s := a.String()
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// RenderTable renders the header, current hand and seats of a view.
func RenderTable(v *projector.GameView) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" %s ", v.Name())))
	fmt.Fprintf(&b, " %s  blinds %d/%d  hand #%d\n",
		v.Table.Status, v.Table.SmallBlind, v.Table.BigBlind, v.Table.HandNumber)

	switch v.HandStatus {
	case projector.HandPresent:
		h := v.Hand
		b.WriteString(HandInfoStyle.Render(fmt.Sprintf("%s  pot %d  bet %d", h.Phase, h.Pot, h.CurrentBet)))
		b.WriteString("  board ")
		b.WriteString(FormatCards(v.Board()))
		b.WriteString("\n")
	case projector.HandPending:
		b.WriteString(InfoStyle.Render("Waiting for hand to start"))
		b.WriteString("\n")
	case projector.HandUnavailable:
		b.WriteString(WarningStyle.Render("Hand unavailable"))
		b.WriteString("\n")
	}

	actor, hasActor := v.ActionOn()
	for _, s := range v.Seats {
		b.WriteString(renderSeat(v, s, hasActor && actor.Index == s.Index))
		b.WriteString("\n")
	}

	if !v.Complete() {
		b.WriteString(WarningStyle.Render("Some records could not be read; view is partial"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSeat(v *projector.GameView, s projector.SeatView, acting bool) string {
	marker := "  "
	switch {
	case acting:
		marker = ActionStyle.Render("▶ ")
	case v.Table.DealerPosition == s.Index && s.State != projector.SeatEmpty:
		marker = "D "
	}
	label := fmt.Sprintf("%sSeat %d  ", marker, s.Index)

	switch s.State {
	case projector.SeatEmpty:
		return label + InfoStyle.Render("(empty)")
	case projector.SeatUnavailable:
		msg := "unavailable"
		if s.Err != nil {
			msg += ": " + s.Err.Error()
		}
		return label + ErrorStyle.Render(msg)
	}

	seat := s.Seat
	line := fmt.Sprintf("%s%-11s %6d chips", label, ShortAddress(seat.Player), seat.Chips)
	if seat.CurrentBet > 0 {
		line += fmt.Sprintf("  bet %d", seat.CurrentBet)
	}
	line += "  " + seat.Status.String()
	if seat.CardsRevealed {
		hole := seat.VisibleHoleCards()
		line += "  " + FormatCards(hole[:])
	}
	return line
}

// RenderHand renders a completed hand with one line per result.
func RenderHand(ev layout.HandCompleted) string {
	var b strings.Builder
	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Hand #%d", ev.HandNumber)))
	fmt.Fprintf(&b, "  %s  pot %d  board %s\n", ev.TableID, ev.TotalPot, FormatCards(ev.Board()))

	for _, r := range ev.Results {
		net := fmt.Sprintf("%+d", r.Net())
		switch {
		case r.ChipsWon > 0:
			net = SuccessStyle.Render(net)
		case r.Net() < 0:
			net = ErrorStyle.Render(net)
		}
		line := fmt.Sprintf("  Seat %d  %s  %s", r.SeatIndex, net, r.HandRank.Label())
		if r.Shown() {
			line += "  " + FormatCards(r.HoleCards[:])
		}
		switch {
		case r.Folded:
			line += "  " + InfoStyle.Render("folded")
		case r.AllIn:
			line += "  " + WarningStyle.Render("all-in")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHistory renders completed hands, most recent first.
func RenderHistory(records []layout.HandCompleted) string {
	if len(records) == 0 {
		return InfoStyle.Render("No completed hands yet") + "\n"
	}
	parts := make([]string, 0, len(records))
	for _, ev := range records {
		parts = append(parts, RenderHand(ev))
	}
	return strings.Join(parts, "\n")
}
