// Package relay forwards completed hands to NATS so other services can
// follow a table without polling the ledger themselves.
//
// Subjects:
//
//	<prefix>.table.<name>.hand     one message per completed hand
package relay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "hiddenhand"

// Publisher is the part of *nats.Conn the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*natsgo.Conn)(nil)

// Connect dials a NATS server and logs connection state changes.
func Connect(url string, logger *log.Logger) (*natsgo.Conn, error) {
	logger = logger.WithPrefix("nats")
	nc, err := natsgo.Connect(url,
		natsgo.Name("hiddenhand"),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectHandler(func(*natsgo.Conn) {
			logger.Warn("Disconnected")
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("Reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return nc, nil
}

// HandMessage is the JSON body published for a completed hand.
type HandMessage struct {
	ID         string          `json:"id"`
	Table      string          `json:"table"`
	HandNumber uint64          `json:"handNumber"`
	Timestamp  time.Time       `json:"timestamp"`
	Board      []string        `json:"board"`
	Pot        uint64          `json:"pot"`
	Players    uint8           `json:"players"`
	Results    []ResultMessage `json:"results"`
	Winners    []uint8         `json:"winners"`
}

// ResultMessage is one player's line in a HandMessage.
type ResultMessage struct {
	Seat   uint8           `json:"seat"`
	Player address.Address `json:"player"`
	Hole   []string        `json:"hole,omitempty"`
	Rank   string          `json:"rank"`
	Won    uint64          `json:"won"`
	Bet    uint64          `json:"bet"`
	Net    int64           `json:"net"`
	Folded bool            `json:"folded"`
	AllIn  bool            `json:"allIn"`
}

// NewHandMessage converts a completed hand into its published form.
func NewHandMessage(ev layout.HandCompleted, id string) HandMessage {
	msg := HandMessage{
		ID:         id,
		Table:      ev.TableID.String(),
		HandNumber: ev.HandNumber,
		Timestamp:  time.Unix(ev.Timestamp, 0).UTC(),
		Pot:        ev.TotalPot,
		Players:    ev.PlayerCount,
		Board:      []string{},
		Results:    make([]ResultMessage, 0, len(ev.Results)),
		Winners:    []uint8{},
	}
	for _, c := range ev.Board() {
		msg.Board = append(msg.Board, c.String())
	}
	for _, r := range ev.Results {
		rm := ResultMessage{
			Seat:   r.SeatIndex,
			Player: r.Player,
			Rank:   r.HandRank.Label(),
			Won:    r.ChipsWon,
			Bet:    r.ChipsBet,
			Net:    r.Net(),
			Folded: r.Folded,
			AllIn:  r.AllIn,
		}
		if r.Shown() {
			rm.Hole = []string{r.HoleCards[0].String(), r.HoleCards[1].String()}
		}
		msg.Results = append(msg.Results, rm)
	}
	for _, w := range ev.Winners() {
		msg.Winners = append(msg.Winners, w.SeatIndex)
	}
	return msg
}

// Relay publishes completed hands.
type Relay struct {
	pub    Publisher
	prefix string
	logger *log.Logger
	newID  func() string
}

// Option configures a Relay.
type Option func(*Relay)

// WithPrefix sets the subject prefix.
func WithPrefix(prefix string) Option {
	return func(r *Relay) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

// New returns a relay publishing through pub.
func New(pub Publisher, opts ...Option) (*Relay, error) {
	if pub == nil {
		return nil, errors.New("relay: a publisher is required")
	}
	r := &Relay{
		pub:    pub,
		prefix: DefaultPrefix,
		logger: log.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithPrefix("relay")
	return r, nil
}

// Subject returns the subject hands for a table are published on.
func (r *Relay) Subject(table string) string {
	return r.prefix + ".table." + subjectToken(table) + ".hand"
}

// Publish encodes and publishes one completed hand.
func (r *Relay) Publish(ev layout.HandCompleted) error {
	msg := NewHandMessage(ev, r.newID())
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("relay: encode hand %d: %w", ev.HandNumber, err)
	}
	subject := r.Subject(msg.Table)
	if err := r.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("relay: publish %s: %w", subject, err)
	}
	r.logger.Debug("Published hand", "subject", subject, "hand", ev.HandNumber, "id", msg.ID)
	return nil
}

// HandCompleted publishes ev and logs failures. Its signature matches the
// projector's completed-hand hook.
func (r *Relay) HandCompleted(ev layout.HandCompleted) {
	if err := r.Publish(ev); err != nil {
		r.logger.Error("Relay failed", "table", ev.TableID, "hand", ev.HandNumber, "error", err)
	}
}

// subjectToken maps a table name onto a single NATS subject token.
func subjectToken(name string) string {
	if name == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
