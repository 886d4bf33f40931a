package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/ledger"
)

// programDataPrefix marks a log line carrying a base64 event buffer.
const programDataPrefix = "Program data: "

// Subscriber streams program events with logsSubscribe.
type Subscriber struct {
	endpoint   string
	commitment string
	dialer     *websocket.Dialer
	logger     *log.Logger
	pingEvery  time.Duration
}

var _ ledger.Subscriber = (*Subscriber)(nil)

// NewSubscriber returns a subscriber for the websocket endpoint. An http(s)
// URL is rewritten to ws(s).
func NewSubscriber(endpoint string, logger *log.Logger) *Subscriber {
	return &Subscriber{
		endpoint:   endpoint,
		commitment: CommitmentConfirmed,
		dialer:     websocket.DefaultDialer,
		logger:     logger.WithPrefix("subscriber"),
		pingEvery:  30 * time.Second,
	}
}

// WebsocketURL derives the websocket endpoint from an HTTP RPC endpoint.
func WebsocketURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	return u.String(), nil
}

type notification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Signature string   `json:"signature"`
				Err       any      `json:"err"`
				Logs      []string `json:"logs"`
			} `json:"value"`
		} `json:"result"`
		Subscription uint64 `json:"subscription"`
	} `json:"params"`

	// Set on the subscription acknowledgement.
	ID     uint64              `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *Error              `json:"error"`
}

// Subscribe implements ledger.Subscriber. It returns nil once ctx is
// cancelled and a transport error when the stream fails.
func (s *Subscriber) Subscribe(ctx context.Context, program address.Address, events chan<- ledger.Event) error {
	wsURL, err := WebsocketURL(s.endpoint)
	if err != nil {
		return err
	}

	s.logger.Info("Connecting", "url", wsURL, "program", program)
	conn, _, err := s.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial %s: %v: %w", wsURL, err, ledger.ErrTransport)
	}

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		})
	}
	defer closeConn()

	// Unblock the reader when the caller cancels.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(s.pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				closeConn()
				return
			case <-stop:
				return
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	sub := request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []any{
			map[string][]string{"mentions": {program.String()}},
			map[string]string{"commitment": s.commitment},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return s.streamError(ctx, err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return s.streamError(ctx, err)
		}

		var n notification
		if err := json.Unmarshal(msg, &n); err != nil {
			s.logger.Warn("Ignoring malformed message", "error", err)
			continue
		}
		if n.Error != nil {
			return fmt.Errorf("logsSubscribe: %w: %w", n.Error, ledger.ErrTransport)
		}
		if n.Method != "logsNotification" {
			if n.ID == sub.ID {
				s.logger.Debug("Subscribed", "subscription", string(n.Result))
			}
			continue
		}

		value := n.Params.Result.Value
		if value.Err != nil {
			// Failed transactions emit logs but change no state.
			continue
		}
		for _, data := range ProgramData(value.Logs) {
			select {
			case events <- ledger.Event{Signature: value.Signature, Data: data}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *Subscriber) streamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
		s.logger.Warn("Stream closed", "error", err)
	}
	return fmt.Errorf("log stream: %v: %w", err, ledger.ErrTransport)
}

// ProgramData extracts the decoded "Program data:" payloads from
// transaction logs, in order. Lines that are not valid base64 are skipped.
func ProgramData(logs []string) [][]byte {
	var out [][]byte
	for _, line := range logs {
		payload, ok := strings.CutPrefix(line, programDataPrefix)
		if !ok {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			continue
		}
		out = append(out, data)
	}
	return out
}
