package rpc

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// rpcServer answers every request with handler's result or error.
func rpcServer(t *testing.T, handler func(req request) (any, *Error)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, rpcErr := handler(req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
			"error":   rpcErr,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetchDecodesBase64Account(t *testing.T) {
	t.Parallel()
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	srv := rpcServer(t, func(req request) (any, *Error) {
		assert.Equal(t, "getAccountInfo", req.Method)
		if !assert.Len(t, req.Params, 2) {
			return nil, nil
		}
		assert.Equal(t, address.DefaultProgram.String(), req.Params[0])
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"data":     []string{base64.StdEncoding.EncodeToString(payload), "base64"},
				"owner":    address.DefaultProgram.String(),
				"lamports": 1,
			},
		}, nil
	})

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	data, err := c.Fetch(context.Background(), address.DefaultProgram)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestClientFetchMissingAccount(t *testing.T) {
	t.Parallel()
	srv := rpcServer(t, func(request) (any, *Error) {
		return map[string]any{"context": map[string]any{"slot": 1}, "value": nil}, nil
	})

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	_, err := c.Fetch(context.Background(), address.DefaultProgram)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.False(t, ledger.Retryable(err))
}

func TestClientFetchRPCError(t *testing.T) {
	t.Parallel()
	srv := rpcServer(t, func(request) (any, *Error) {
		return nil, &Error{Code: -32602, Message: "Invalid param"}
	})

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	_, err := c.Fetch(context.Background(), address.DefaultProgram)
	assert.ErrorIs(t, err, ledger.ErrTransport)
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
}

func TestClientFetchHTTPStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ledger.ErrTransport},
		{http.StatusBadGateway, ledger.ErrTransport},
		{http.StatusGatewayTimeout, ledger.ErrTimeout},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL, WithLogger(quietLogger()))
			_, err := c.Fetch(context.Background(), address.DefaultProgram)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClientFetchTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := NewClient(srv.URL, WithLogger(quietLogger()), WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.Fetch(context.Background(), address.DefaultProgram)
	assert.ErrorIs(t, err, ledger.ErrTimeout)
	assert.True(t, ledger.Retryable(err))
}

func TestClientFetchCancelled(t *testing.T) {
	t.Parallel()
	srv := rpcServer(t, func(request) (any, *Error) { return nil, nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, WithLogger(quietLogger()))
	_, err := c.Fetch(ctx, address.DefaultProgram)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ledger.Retryable(err))
}

func TestClientRateLimit(t *testing.T) {
	t.Parallel()
	srv := rpcServer(t, func(request) (any, *Error) {
		return map[string]any{"value": nil}, nil
	})

	c := NewClient(srv.URL, WithLogger(quietLogger()), WithRateLimit(20, 1))
	start := time.Now()
	for range 3 {
		_, err := c.Fetch(context.Background(), address.DefaultProgram)
		require.ErrorIs(t, err, ledger.ErrNotFound)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
