package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justyntemme/glance/internal/debug"
)

// Searcher runs a single query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) Outcome
}

// Dispatcher runs each search on its own goroutine. Every request gets a
// sequence number; an outcome is delivered only if no newer request was
// dispatched while it ran.
type Dispatcher struct {
	searcher Searcher
	debounce time.Duration

	latest   atomic.Uint64
	outcomes chan Outcome

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. debounce is slept on the worker
// before the request is sent.
func NewDispatcher(s Searcher, debounce time.Duration) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		searcher: s,
		debounce: debounce,
		outcomes: make(chan Outcome, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Outcomes delivers the outcome of the latest request.
func (d *Dispatcher) Outcomes() <-chan Outcome {
	return d.outcomes
}

// Latest returns the sequence number of the most recent request.
func (d *Dispatcher) Latest() uint64 {
	return d.latest.Load()
}

// IsCurrent reports whether seq is still the most recent request.
func (d *Dispatcher) IsCurrent(seq uint64) bool {
	return d.latest.Load() == seq
}

// Dispatch starts a search and returns its sequence number.
func (d *Dispatcher) Dispatch(query string, limit int) uint64 {
	seq := d.latest.Add(1)
	debug.Log(debug.SEARCH, "Dispatch #%d: %q limit=%d", seq, query, limit)

	d.wg.Add(1)
	go d.run(seq, query, limit)
	return seq
}

func (d *Dispatcher) run(seq uint64, query string, limit int) {
	defer d.wg.Done()

	if d.debounce > 0 {
		t := time.NewTimer(d.debounce)
		select {
		case <-t.C:
		case <-d.ctx.Done():
			t.Stop()
			return
		}
	}

	// Superseded while waiting: skip the request. Requests already sent
	// still run to completion.
	if !d.IsCurrent(seq) {
		debug.Log(debug.SEARCH, "Dispatch #%d: superseded before sending", seq)
		return
	}

	out := d.searcher.Search(d.ctx, query, limit)
	out.Seq = seq

	if !d.IsCurrent(seq) {
		debug.Log(debug.SEARCH, "Dispatch #%d: dropped, superseded by #%d", seq, d.Latest())
		return
	}

	// Replace an undelivered older outcome rather than block.
	for {
		select {
		case <-d.ctx.Done():
			return
		case d.outcomes <- out:
			return
		default:
		}
		select {
		case old := <-d.outcomes:
			debug.Log(debug.SEARCH, "Dispatch #%d: discarded undelivered #%d", seq, old.Seq)
		default:
		}
		if !d.IsCurrent(seq) {
			return
		}
	}
}

// Close stops delivery, waits for running searches to return and closes
// the Outcomes channel. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
	close(d.outcomes)
}
