package axio

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/dotfield/axio/internal"
)

// Event is the cross-thread wakeup primitive. Signal may be called
// from any thread; the callback runs on the reactor thread, inside a
// tick, once per signalled word. Under the hood the read side of a
// private signal channel is just an input monitor operation the
// dispatcher services like any other.
type Event struct {
	reactor *Reactor
	ch      *internal.SignalChannel
	cb      EventCallback
	op      *Operation

	// mu guards the pending count and the destroyed flag against
	// signallers racing the owner; everything else is owner-only
	mu        sync.Mutex
	pending   int
	destroyed bool
}

// NewEvent creates an event owned by this reactor. Destroy it
// explicitly; Close does not reach into events.
func (r *Reactor) NewEvent(cb EventCallback) (*Event, error) {
	ch, err := internal.NewSignalChannel()
	if err != nil {
		return nil, errors.Wrap(err, "axio: event channel")
	}

	e := &Event{reactor: r, ch: ch, cb: cb}
	op, err := r.RequestMonitor(ch.Descriptor(), Input, e.fire)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	e.op = op
	return e, nil
}

// Signal posts one word to the event. It is the only reactor entry
// point that is safe to call from another thread. The word is dropped
// with an error when the event is destroyed or the channel is full;
// the pending count only grows on a successful post.
func (e *Event) Signal(word uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return ErrEventDestroyed
	}
	if err := e.ch.Post(word); err != nil {
		return err
	}
	e.pending++
	return nil
}

// Pending returns the number of signalled words not yet delivered.
func (e *Event) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Destroy cancels the monitor operation before releasing the channel,
// so the dispatcher never touches freed state. A Signal racing Destroy
// either lands beforehand and is still delivered, or fails cleanly.
func (e *Event) Destroy() error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrEventDestroyed
	}
	e.destroyed = true
	e.mu.Unlock()

	e.reactor.Cancel(e.op)
	return e.ch.Close()
}

// fire is the monitor callback on the channel's read side: take one
// word, account for it, hand it to the user.
func (e *Event) fire(err error) Action {
	if err != nil {
		// a private channel reporting a descriptor error has nothing
		// left to deliver
		return Continue
	}

	word, err := e.ch.Receive()
	if err != nil {
		return Continue
	}

	e.mu.Lock()
	if e.pending > 0 {
		e.pending--
	}
	e.mu.Unlock()

	e.cb(word)
	return Continue
}
