package projector

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lox/hiddenhand/internal/address"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/ledger"
)

// Start polls every configured table and, with a Subscriber, ingests events
// from the program's log stream. It returns immediately; call Stop to end.
func (p *Projector) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	tables := make([]address.Address, 0, len(p.opts.Tables))
	for _, id := range p.opts.Tables {
		addr, err := p.deriver.Table(id)
		if err != nil {
			return err
		}
		tables = append(tables, addr)
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true

	for _, addr := range tables {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.pollLoop(ctx, addr)
		}()
	}
	if p.opts.Subscriber != nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.subscribeLoop(ctx)
		}()
	}

	p.logger.Info("Started",
		"program", p.deriver.Program(),
		"tables", len(tables),
		"subscribe", p.opts.Subscriber != nil,
		"interval", p.opts.PollInterval)
	return nil
}

// Stop cancels the loops started by Start and waits for them to return.
func (p *Projector) Stop() {
	p.runMu.Lock()
	cancel := p.cancel
	p.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

func (p *Projector) pollLoop(ctx context.Context, addr address.Address) {
	logger := p.logger.With("table", addr)
	w := p.clock.TickerFunc(ctx, p.opts.PollInterval, func() error {
		p.poll(ctx, logger, addr)
		return nil
	}, "projector", "poll")
	p.poll(ctx, logger, addr)
	if err := w.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Poll loop stopped", "error", err)
	}
}

// poll runs one refresh and reports its outcome. Failures are logged so the
// ticker keeps running.
func (p *Projector) poll(ctx context.Context, logger *log.Logger, addr address.Address) {
	_, err := p.Refresh(ctx, addr)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, ErrTableNotFound):
		logger.Debug("Table not created yet")
	case ledger.Retryable(err):
		logger.Warn("Refresh failed, will retry", "error", err)
	default:
		logger.Error("Refresh failed", "error", err)
	}
}

func (p *Projector) subscribeLoop(ctx context.Context) {
	events := make(chan ledger.Event, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.ingestLoop(ctx, events)
	}()
	defer func() { <-done }()

	for {
		err := p.opts.Subscriber.Subscribe(ctx, p.deriver.Program(), events)
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("Event stream ended, resubscribing", "error", err, "delay", p.opts.ResubscribeDelay)
		p.metrics.resubscribes.Inc()

		t := p.clock.NewTimer(p.opts.ResubscribeDelay, "projector", "resubscribe")
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (p *Projector) ingestLoop(ctx context.Context, events <-chan ledger.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !layout.HasDiscriminator(ev.Data, layout.KindHandCompleted) {
				p.metrics.events.WithLabelValues(eventIgnored).Inc()
				continue
			}
			if _, err := p.OnHandCompleted(ev.Data, ev.Signature); err != nil {
				p.logger.Error("Bad HandCompleted event", "signature", ev.Signature, "error", err)
			}
		}
	}
}
