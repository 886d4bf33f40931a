// Package ledgertest provides an in-memory ledger for tests.
package ledgertest

import (
	"context"
	"encoding"
	"fmt"
	"sync"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/ledger"
)

// Ledger is an in-memory Fetcher and Subscriber. The zero value is not
// usable; call New.
type Ledger struct {
	mu       sync.Mutex
	accounts map[address.Address][]byte
	errs     map[address.Address]error
	calls    map[address.Address]int
	gate     chan struct{}
	started  chan address.Address

	feed          chan ledger.Event
	drop          chan struct{}
	subscriptions int
}

var (
	_ ledger.Fetcher    = (*Ledger)(nil)
	_ ledger.Subscriber = (*Ledger)(nil)
)

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[address.Address][]byte),
		errs:     make(map[address.Address]error),
		calls:    make(map[address.Address]int),
		started:  make(chan address.Address, 1024),
		feed:     make(chan ledger.Event, 1024),
		drop:     make(chan struct{}, 1),
	}
}

// Put stores raw account bytes.
func (l *Ledger) Put(addr address.Address, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[addr] = append([]byte(nil), data...)
	delete(l.errs, addr)
}

// PutRecord encodes and stores a record.
func (l *Ledger) PutRecord(addr address.Address, rec encoding.BinaryMarshaler) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode %s: %w", addr, err)
	}
	l.Put(addr, data)
	return nil
}

// Remove deletes an account so later fetches report ErrNotFound.
func (l *Ledger) Remove(addr address.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, addr)
}

// FailWith makes fetches of addr return err until the account is Put again.
func (l *Ledger) FailWith(addr address.Address, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[addr] = err
}

// Hold blocks every subsequent Fetch until the returned release func is
// called. Fetches still honour context cancellation while held.
func (l *Ledger) Hold() (release func()) {
	gate := make(chan struct{})
	l.mu.Lock()
	l.gate = gate
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			if l.gate == gate {
				l.gate = nil
			}
			l.mu.Unlock()
			close(gate)
		})
	}
}

// Started receives the address of every Fetch as it begins.
func (l *Ledger) Started() <-chan address.Address {
	return l.started
}

// Calls returns how many times addr has been fetched.
func (l *Ledger) Calls(addr address.Address) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[addr]
}

// TotalCalls returns the number of fetches across all addresses.
func (l *Ledger) TotalCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

func (l *Ledger) Fetch(ctx context.Context, addr address.Address) ([]byte, error) {
	l.mu.Lock()
	l.calls[addr]++
	gate := l.gate
	l.mu.Unlock()

	select {
	case l.started <- addr:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.errs[addr]; ok {
		return nil, err
	}
	data, ok := l.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%s: %w", addr, ledger.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Emit queues an event for the active (or next) subscription.
func (l *Ledger) Emit(ev ledger.Event) {
	l.feed <- ev
}

// Drop ends the active subscription with a transport error.
func (l *Ledger) Drop() {
	select {
	case l.drop <- struct{}{}:
	default:
	}
}

// Subscriptions counts calls to Subscribe.
func (l *Ledger) Subscriptions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscriptions
}

func (l *Ledger) Subscribe(ctx context.Context, _ address.Address, events chan<- ledger.Event) error {
	l.mu.Lock()
	l.subscriptions++
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.drop:
			return fmt.Errorf("stream dropped: %w", ledger.ErrTransport)
		case ev := <-l.feed:
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
