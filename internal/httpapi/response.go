package httpapi

import (
	"time"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/projector"
	"github.com/lox/hiddenhand/poker"
)

// TableResponse is the JSON form of a GameView.
type TableResponse struct {
	Name       string          `json:"name"`
	Address    address.Address `json:"address"`
	Status     string          `json:"status"`
	HandNumber uint64          `json:"handNumber"`
	SmallBlind uint64          `json:"smallBlind"`
	BigBlind   uint64          `json:"bigBlind"`
	MaxPlayers uint8           `json:"maxPlayers"`
	Dealer     uint8           `json:"dealer"`
	Seats      []SeatResponse  `json:"seats"`
	Hand       *HandResponse   `json:"hand,omitempty"`
	HandStatus string          `json:"handStatus"`
	Complete   bool            `json:"complete"`
	Generation uint64          `json:"generation"`
	FetchedAt  time.Time       `json:"fetchedAt"`
	History    int             `json:"history"`
}

// SeatResponse is one seat of a TableResponse.
type SeatResponse struct {
	Index   uint8            `json:"index"`
	State   string           `json:"state"`
	Address *address.Address `json:"address,omitempty"`
	Player  *address.Address `json:"player,omitempty"`
	Chips   uint64           `json:"chips,omitempty"`
	Bet     uint64           `json:"bet,omitempty"`
	Status  string           `json:"status,omitempty"`
	Cards   []string         `json:"cards,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// HandResponse is the current hand of a TableResponse.
type HandResponse struct {
	Phase      string   `json:"phase"`
	Pot        uint64   `json:"pot"`
	CurrentBet uint64   `json:"currentBet"`
	Board      []string `json:"board"`
	ActionOn   *uint8   `json:"actionOn,omitempty"`
}

// NewTableResponse converts a view.
func NewTableResponse(v *projector.GameView) TableResponse {
	resp := TableResponse{
		Name:       v.Name(),
		Address:    v.Address,
		Status:     v.Table.Status.String(),
		HandNumber: v.Table.HandNumber,
		SmallBlind: v.Table.SmallBlind,
		BigBlind:   v.Table.BigBlind,
		MaxPlayers: v.Table.MaxPlayers,
		Dealer:     v.Table.DealerPosition,
		Seats:      make([]SeatResponse, 0, len(v.Seats)),
		HandStatus: v.HandStatus.String(),
		Complete:   v.Complete(),
		Generation: v.Generation,
		FetchedAt:  v.FetchedAt,
		History:    len(v.History),
	}
	for _, s := range v.Seats {
		resp.Seats = append(resp.Seats, newSeatResponse(s))
	}
	if v.HandStatus == projector.HandPresent {
		h := &HandResponse{
			Phase:      v.Hand.Phase.String(),
			Pot:        v.Hand.Pot,
			CurrentBet: v.Hand.CurrentBet,
			Board:      cardStrings(v.Board()),
		}
		if actor, ok := v.ActionOn(); ok {
			idx := actor.Index
			h.ActionOn = &idx
		}
		resp.Hand = h
	}
	return resp
}

func newSeatResponse(s projector.SeatView) SeatResponse {
	sr := SeatResponse{Index: s.Index, State: s.State.String()}
	switch s.State {
	case projector.SeatOccupied:
		addr, player := s.Address, s.Seat.Player
		sr.Address = &addr
		sr.Player = &player
		sr.Chips = s.Seat.Chips
		sr.Bet = s.Seat.CurrentBet
		sr.Status = s.Seat.Status.String()
		hole := s.Seat.VisibleHoleCards()
		if hole[0] != poker.NoCard || hole[1] != poker.NoCard {
			sr.Cards = cardStrings(hole[:])
		}
	case projector.SeatUnavailable:
		addr := s.Address
		sr.Address = &addr
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
	}
	return sr
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}
