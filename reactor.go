package axio

import (
	"container/list"

	"go.uber.org/zap"

	"github.com/dotfield/axio/internal"
)

// Reactor is one thread's dispatcher and function entry registry. It
// is not safe for concurrent use: every call except Event.Signal must
// come from the owning thread. Teardown is explicit via Close, which
// drops every entry and operation without invoking callbacks.
type Reactor struct {
	monitor internal.MonitorSet

	// registry orders entries for the ready scan: monitor entries are
	// pushed to the front (most recent first), transfer entries to the
	// back (oldest first), and serviced entries that continue rotate to
	// the back
	registry *list.List
	entries  map[entryKey]*functionEntry

	pending int

	logger *zap.Logger
	stats  *Stats

	closed bool
}

type Option func(*Reactor)

// WithLogger routes reactor-level failures (wait backend errors,
// request resource errors) to l. Per-operation I/O errors are never
// logged; they reach the operation's callback instead.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reactor) { r.logger = l }
}

// WithStats records per-tick service latency into an HDR histogram,
// exposed through Stats.
func WithStats() Option {
	return func(r *Reactor) { r.stats = newStats() }
}

func New(opts ...Option) (*Reactor, error) {
	monitor, err := internal.NewMonitorSet()
	if err != nil {
		return nil, err
	}

	r := &Reactor{
		monitor:  monitor,
		registry: list.New(),
		entries:  make(map[entryKey]*functionEntry),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func MustNew(opts ...Option) *Reactor {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Pending returns the number of outstanding operations.
func (r *Reactor) Pending() int {
	return r.pending
}

// Stats returns the tick latency recorder, nil unless WithStats was
// given.
func (r *Reactor) Stats() *Stats {
	return r.stats
}

// RunOne waits indefinitely for one operation to become ready and
// services it.
func (r *Reactor) RunOne() bool {
	return r.runOne(-1)
}

// RunOneFor waits up to timeoutMs for one operation to become ready
// and services it, reporting whether anything was serviced. A timeout
// of 0 polls without blocking; negative waits indefinitely.
func (r *Reactor) RunOneFor(timeoutMs int) bool {
	return r.runOne(timeoutMs)
}

// Poll services one already-ready operation without blocking.
func (r *Reactor) Poll() bool {
	return r.runOne(0)
}

// Run services operations until the reactor runs dry or is closed.
// Callers with their own deadline loop RunOneFor instead.
func (r *Reactor) Run() {
	for !r.closed && r.pending > 0 {
		r.RunOne()
	}
}

// Close releases every function entry and operation. No callbacks run;
// in-flight platform actions are aborted. Descriptors themselves
// belong to the caller and stay open.
func (r *Reactor) Close() error {
	if r.closed {
		return ErrReactorClosed
	}
	r.closed = true

	for _, e := range r.entries {
		if !e.empty() {
			e.state.Abort(e.key.fd)
		}
		for !e.empty() {
			op := e.ops.Remove().(*Operation)
			op.release()
		}
		e.state.Close()
	}
	r.entries = nil
	r.registry.Init()
	r.pending = 0

	return r.monitor.Close()
}
