// Package ledger defines the collaborators that deliver raw bytes from the
// chain: a point fetch keyed by address, and a push stream of program events.
package ledger

import (
	"context"
	"errors"

	"github.com/lox/hiddenhand/internal/address"
)

var (
	// ErrNotFound means the account does not exist (yet). It is an expected
	// outcome, not a failure.
	ErrNotFound = errors.New("ledger: account not found")
	// ErrTimeout means the collaborator gave up waiting. The record may
	// exist and the caller may retry.
	ErrTimeout = errors.New("ledger: timeout")
	// ErrTransport wraps any other network or protocol failure.
	ErrTransport = errors.New("ledger: transport error")
)

// Fetcher reads the current bytes of an account.
type Fetcher interface {
	// Fetch returns the account data, or an error matching ErrNotFound,
	// ErrTimeout or ErrTransport.
	Fetch(ctx context.Context, addr address.Address) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, addr address.Address) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, addr address.Address) ([]byte, error) {
	return f(ctx, addr)
}

// Event is one raw event buffer as delivered by a subscription. Signature
// identifies the transaction that emitted it; delivery is at-least-once so
// the same signature may arrive twice.
type Event struct {
	Signature string
	Data      []byte
}

// Subscriber streams program events until ctx is cancelled or the stream
// fails. Subscribe blocks; a nil error only follows cancellation.
type Subscriber interface {
	Subscribe(ctx context.Context, program address.Address, events chan<- Event) error
}

// Retryable reports whether err is worth retrying: a timeout or transport
// failure, but never absence.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport)
}

// IsTimeout reports whether err is, or is caused by, a timeout. A context
// deadline counts.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
