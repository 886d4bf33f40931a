// Package projector builds consistent table views from ledger records and
// keeps a deduplicated history of completed hands.
//
// A Projector is the single writer for its views. Refreshes for the same
// table are coalesced, seat records are fetched concurrently, and a view is
// published in one atomic swap. Completed-hand events from polling and from
// a subscription share one ingestion path keyed by (table, hand number), so
// delivering the same event twice records it once.
package projector

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	lru "github.com/hashicorp/golang-lru"
	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrTableNotFound means the table account does not exist. It also
	// matches ledger.ErrNotFound.
	ErrTableNotFound = errors.New("projector: table not found")
	// ErrInconsistent means records decoded but do not belong together, for
	// example a seat record that names another table.
	ErrInconsistent = errors.New("projector: inconsistent records")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("projector: already started")
)

// Defaults applied by New.
const (
	DefaultPollInterval         = 2 * time.Second
	DefaultResubscribeDelay     = 5 * time.Second
	DefaultMaxConcurrentFetches = 8
)

// Options configures a Projector. Fetcher is required.
type Options struct {
	Fetcher    ledger.Fetcher
	Subscriber ledger.Subscriber
	Deriver    *address.Deriver
	Clock      quartz.Clock
	Logger     *log.Logger
	Registerer prometheus.Registerer

	// Tables are polled by Start.
	Tables []address.TableID

	PollInterval         time.Duration
	ResubscribeDelay     time.Duration
	HistoryCapacity      int
	DedupCapacity        int
	MaxConcurrentFetches int

	// OnPublish runs after each new view is published.
	OnPublish func(*GameView)
	// OnHandCompleted runs after a completed hand is added to history.
	OnHandCompleted func(layout.HandCompleted)
}

// Projector produces GameViews. It is safe for concurrent use.
type Projector struct {
	opts    Options
	fetcher ledger.Fetcher
	deriver *address.Deriver
	clock   quartz.Clock
	logger  *log.Logger
	metrics *metrics

	flight     singleflight.Group
	generation atomic.Uint64

	// views maps a table address to its *atomic.Pointer[GameView].
	views sync.Map

	// mu serialises every write: publishes, history and the dedup set.
	mu        sync.Mutex
	histories map[address.TableID]*history
	seen      *lru.Cache

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New returns a Projector.
func New(opts Options) (*Projector, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("projector: a fetcher is required")
	}
	if opts.Deriver == nil {
		opts.Deriver = address.NewDeriver(address.DefaultProgram)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ResubscribeDelay <= 0 {
		opts.ResubscribeDelay = DefaultResubscribeDelay
	}
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = DefaultHistoryCapacity
	}
	if opts.DedupCapacity < opts.HistoryCapacity {
		opts.DedupCapacity = 4 * opts.HistoryCapacity
	}
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}

	seen, err := lru.New(opts.DedupCapacity)
	if err != nil {
		return nil, fmt.Errorf("projector: dedup cache: %w", err)
	}

	return &Projector{
		opts:      opts,
		fetcher:   opts.Fetcher,
		deriver:   opts.Deriver,
		clock:     opts.Clock,
		logger:    opts.Logger.WithPrefix("projector"),
		metrics:   newMetrics(opts.Registerer),
		histories: make(map[address.TableID]*history),
		seen:      seen,
	}, nil
}

// TableAddress derives the address of a table account.
func (p *Projector) TableAddress(id address.TableID) (address.Address, error) {
	return p.deriver.Table(id)
}

// View returns the latest published view of a table, if any.
func (p *Projector) View(table address.Address) (*GameView, bool) {
	v, ok := p.views.Load(table)
	if !ok {
		return nil, false
	}
	view := v.(*atomic.Pointer[GameView]).Load()
	return view, view != nil
}

// History returns the completed hands recorded for a table, most recent
// first.
func (p *Projector) History(id address.TableID) []layout.HandCompleted {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histories[id]
	if !ok {
		return nil
	}
	return h.snapshot()
}

// RefreshTable refreshes the table with the given id.
func (p *Projector) RefreshTable(ctx context.Context, id address.TableID) (*GameView, error) {
	addr, err := p.TableAddress(id)
	if err != nil {
		return nil, err
	}
	return p.Refresh(ctx, addr)
}

// Refresh fetches the table, its occupied seats and its current hand, and
// publishes the merged view. Concurrent calls for the same table share one
// fetch; a joiner receives the leader's outcome, including the leader's
// cancellation. A missing table yields ErrTableNotFound, and fetch failures
// keep their ledger classification so callers can test ledger.Retryable.
// Decode errors are returned as is.
func (p *Projector) Refresh(ctx context.Context, table address.Address) (*GameView, error) {
	ch := p.flight.DoChan(table.String(), func() (any, error) {
		return p.refresh(ctx, table)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*GameView), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Projector) refresh(ctx context.Context, table address.Address) (view *GameView, err error) {
	gen := p.generation.Add(1)
	start := p.clock.Now()
	result := resultPublished
	defer func() {
		if err != nil {
			switch {
			case ctx.Err() != nil:
				result = resultCancelled
			case errors.Is(err, ErrTableNotFound):
				result = resultNotFound
			default:
				result = resultError
			}
		}
		p.metrics.refreshes.WithLabelValues(result).Inc()
		p.metrics.refreshDuration.Observe(p.clock.Since(start).Seconds())
	}()

	raw, err := p.fetcher.Fetch(ctx, table)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTableNotFound, table, err)
		}
		return nil, fmt.Errorf("fetch table %s: %w", table, err)
	}
	tbl, err := layout.DecodeTable(raw)
	if err != nil {
		p.metrics.decodeErrors.WithLabelValues(layout.KindTable.String()).Inc()
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	next := &GameView{
		Address:   table,
		Table:     tbl,
		Seats:     make([]SeatView, tbl.MaxPlayers),
		FetchedAt: start,
	}
	for i := range next.Seats {
		next.Seats[i] = SeatView{Index: uint8(i), State: SeatEmpty}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrentFetches)
	for _, idx := range tbl.Seats() {
		seatAddr, err := p.deriver.Seat(table, idx, tbl.MaxPlayers)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			sv, err := p.fetchSeat(gctx, table, idx, seatAddr)
			if err != nil {
				return err
			}
			next.Seats[idx] = sv
			return nil
		})
	}
	if tbl.HandInProgress() {
		handAddr, err := p.deriver.Hand(table, tbl.HandNumber)
		if err != nil {
			return nil, err
		}
		next.HandAddress = handAddr
		g.Go(func() error {
			return p.fetchHand(gctx, table, tbl.HandNumber, next)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	published, ok := p.publish(next, gen)
	if !ok {
		result = resultStale
	}
	return published, nil
}

func (p *Projector) fetchSeat(ctx context.Context, table address.Address, idx uint8, addr address.Address) (SeatView, error) {
	sv := SeatView{Index: idx, Address: addr}
	raw, err := p.fetcher.Fetch(ctx, addr)
	if err != nil {
		if ctx.Err() != nil {
			return sv, ctx.Err()
		}
		if errors.Is(err, ledger.ErrNotFound) || ledger.Retryable(err) {
			p.logger.Debug("Seat unavailable", "table", table, "seat", idx, "error", err)
			sv.State = SeatUnavailable
			sv.Err = err
			return sv, nil
		}
		return sv, fmt.Errorf("fetch seat %d: %w", idx, err)
	}
	seat, err := layout.DecodeSeat(raw)
	if err != nil {
		p.metrics.decodeErrors.WithLabelValues(layout.KindSeat.String()).Inc()
		return sv, fmt.Errorf("seat %d (%s): %w", idx, addr, err)
	}
	if seat.Table != table || seat.SeatIndex != idx {
		return sv, fmt.Errorf("seat %d (%s) names table %s seat %d: %w", idx, addr, seat.Table, seat.SeatIndex, ErrInconsistent)
	}
	sv.State = SeatOccupied
	sv.Seat = seat
	return sv, nil
}

// fetchHand fills the hand fields of next. Only the hand goroutine writes them.
func (p *Projector) fetchHand(ctx context.Context, table address.Address, number uint64, next *GameView) error {
	raw, err := p.fetcher.Fetch(ctx, next.HandAddress)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ledger.ErrNotFound):
			next.HandStatus = HandPending
			return nil
		case ledger.Retryable(err):
			p.logger.Debug("Hand unavailable", "table", table, "hand", number, "error", err)
			next.HandStatus = HandUnavailable
			return nil
		default:
			return fmt.Errorf("fetch hand %d: %w", number, err)
		}
	}
	hand, err := layout.DecodeHand(raw)
	if err != nil {
		p.metrics.decodeErrors.WithLabelValues(layout.KindHand.String()).Inc()
		return fmt.Errorf("hand %d (%s): %w", number, next.HandAddress, err)
	}
	if hand.Table != table || hand.HandNumber != number {
		return fmt.Errorf("hand record %s names table %s hand %d: %w", next.HandAddress, hand.Table, hand.HandNumber, ErrInconsistent)
	}
	next.HandStatus = HandPresent
	next.Hand = hand
	return nil
}

func (p *Projector) slot(table address.Address) *atomic.Pointer[GameView] {
	v, _ := p.views.LoadOrStore(table, new(atomic.Pointer[GameView]))
	return v.(*atomic.Pointer[GameView])
}

// publish swaps in next unless the current view came from a later refresh
// or shows later game state. It returns the view that is current afterwards.
func (p *Projector) publish(next *GameView, gen uint64) (*GameView, bool) {
	p.mu.Lock()
	slot := p.slot(next.Address)
	cur := slot.Load()
	if cur != nil && (cur.Generation > gen || next.regressesFrom(cur)) {
		p.mu.Unlock()
		p.logger.Debug("Discarding stale view",
			"table", next.Name(),
			"generation", gen,
			"current", cur.Generation,
			"hand", next.Table.HandNumber)
		return cur, false
	}
	next.Generation = gen
	if h, ok := p.histories[next.Table.TableID]; ok {
		next.History = h.snapshot()
	}
	slot.Store(next)
	p.mu.Unlock()

	if p.opts.OnPublish != nil {
		p.opts.OnPublish(next)
	}
	return next, true
}

// OnHandCompleted decodes a HandCompleted event and records it. It reports
// whether the event was new. The signature is only used for logging.
func (p *Projector) OnHandCompleted(raw []byte, signature string) (bool, error) {
	ev, err := layout.DecodeHandCompleted(raw)
	if err != nil {
		p.metrics.decodeErrors.WithLabelValues(layout.KindHandCompleted.String()).Inc()
		p.metrics.events.WithLabelValues(eventInvalid).Inc()
		return false, fmt.Errorf("event %s: %w", signature, err)
	}
	return p.Record(ev, signature), nil
}

// Record adds a decoded completed hand to its table's history. Records are
// keyed by table id and hand number, so order of arrival does not matter.
func (p *Projector) Record(ev layout.HandCompleted, signature string) bool {
	key := ev.Key()
	addr, addrErr := p.deriver.Table(ev.TableID)

	size, republished, ok := p.insert(ev, signature, addr, addrErr == nil)
	if !ok {
		p.metrics.events.WithLabelValues(eventDuplicate).Inc()
		p.logger.Debug("Duplicate hand", "key", key, "signature", signature)
		return false
	}
	p.metrics.historySize.WithLabelValues(tableLabel(ev.TableID, addr, addrErr)).Set(float64(size))

	p.metrics.events.WithLabelValues(eventAdded).Inc()
	p.logger.Info("Hand completed",
		"table", tableLabel(ev.TableID, addr, addrErr),
		"hand", ev.HandNumber,
		"pot", ev.TotalPot,
		"players", len(ev.Results))

	if p.opts.OnHandCompleted != nil {
		p.opts.OnHandCompleted(ev)
	}
	if republished != nil && p.opts.OnPublish != nil {
		p.opts.OnPublish(republished)
	}
	return true
}

// insert adds ev under the writer lock. It returns the table's history size
// and, when a view of the table is published, the view carrying the new
// history.
func (p *Projector) insert(ev layout.HandCompleted, signature string, addr address.Address, haveAddr bool) (int, *GameView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seen, _ := p.seen.ContainsOrAdd(ev.Key(), signature); seen {
		return 0, nil, false
	}
	h, ok := p.histories[ev.TableID]
	if !ok {
		h = newHistory(p.opts.HistoryCapacity)
		p.histories[ev.TableID] = h
	}
	if !h.insert(ev) {
		return 0, nil, false
	}

	var republished *GameView
	if haveAddr {
		slot := p.slot(addr)
		if cur := slot.Load(); cur != nil {
			republished = cur.withHistory(h.snapshot())
			slot.Store(republished)
		}
	}
	return h.len(), republished, true
}

// tableLabel names a table by its base58 address. Table ids are arbitrary
// bytes and cannot be used as label values directly.
func tableLabel(id address.TableID, addr address.Address, err error) string {
	if err != nil {
		return hex.EncodeToString(id[:])
	}
	return addr.String()
}
