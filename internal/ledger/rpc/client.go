// Package rpc implements the ledger collaborators against a Solana-style
// JSON-RPC node: account reads over HTTP and program log subscriptions over
// websocket.
package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/ledger"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Commitment levels accepted by the node.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// Client fetches accounts with getAccountInfo.
type Client struct {
	endpoint   string
	commitment string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	nextID     atomic.Uint64
}

var _ ledger.Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithCommitment sets the commitment level for reads.
func WithCommitment(commitment string) Option {
	return func(cl *Client) { cl.commitment = commitment }
}

// WithRateLimit caps requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(cl *Client) { cl.logger = logger.WithPrefix("rpc") }
}

// NewClient returns a client for the HTTP endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		commitment: CommitmentConfirmed,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     log.Default().WithPrefix("rpc"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	ID     uint64              `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *Error              `json:"error"`
}

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type accountInfo struct {
	Value *struct {
		Data       []string `json:"data"`
		Owner      string   `json:"owner"`
		Lamports   uint64   `json:"lamports"`
		Executable bool     `json:"executable"`
	} `json:"value"`
}

// Fetch implements ledger.Fetcher.
func (c *Client) Fetch(ctx context.Context, addr address.Address) ([]byte, error) {
	var info accountInfo
	params := []any{addr.String(), map[string]string{"encoding": "base64", "commitment": c.commitment}}
	if err := c.call(ctx, "getAccountInfo", params, &info); err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", addr, err)
	}
	if info.Value == nil {
		return nil, fmt.Errorf("%s: %w", addr, ledger.ErrNotFound)
	}
	if len(info.Value.Data) != 2 || info.Value.Data[1] != "base64" {
		return nil, fmt.Errorf("getAccountInfo %s: unexpected data encoding: %w", addr, ledger.ErrTransport)
	}
	data, err := base64.StdEncoding.DecodeString(info.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %v: %w", addr, err, ledger.ErrTransport)
	}
	return data, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return classify(err)
		}
	}

	body, err := json.Marshal(request{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	c.logger.Debug("rpc call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("http %d: %w", resp.StatusCode, ledger.ErrTimeout)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("http %d: %w", resp.StatusCode, ledger.ErrTransport)
	}

	var rpcResp response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ledger.ErrTransport)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%w: %w", rpcResp.Error, ledger.ErrTransport)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("decode result: %v: %w", err, ledger.ErrTransport)
	}
	return nil
}

// classify maps network failures onto the ledger taxonomy.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ledger.ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%v: %w", err, ledger.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, ledger.ErrTransport)
}
