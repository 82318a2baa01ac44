package axio

import (
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/dotfield/axio/internal"
)

// RequestMonitor registers interest in a readiness condition on fd.
// The callback runs once per notification; returning Continue rearms
// it, Stop removes it.
func (r *Reactor) RequestMonitor(fd Descriptor, role Role, cb MonitorCallback) (*Operation, error) {
	op := &Operation{monitor: cb}
	if err := r.enqueue(entryKey{fd: fd, kind: monitorKind(role)}, op); err != nil {
		return nil, err
	}
	return op, nil
}

// RequestInputTransfer reads up to capacity bytes from fd. The
// callback runs every time the buffered prefix grows (or an error or
// eof arrives) and reports how much of it the caller consumed; the
// operation persists until cancelled or errored. See InputCallback.
func (r *Reactor) RequestInputTransfer(fd Descriptor, capacity int, cb InputCallback) (*Operation, error) {
	if capacity <= 0 {
		return nil, errors.New("axio: input transfer capacity must be positive")
	}

	buf := bytebufferpool.Get()
	if cap(buf.B) < capacity {
		buf.B = make([]byte, capacity)
	}
	buf.B = buf.B[:capacity]

	op := &Operation{input: cb, buf: buf, data: buf.B}
	if err := r.enqueue(entryKey{fd: fd, kind: transferInput}, op); err != nil {
		op.release()
		return nil, err
	}
	return op, nil
}

// RequestOutputTransfer writes all of data to fd across as many
// platform writes as it takes. The callback fires exactly once, when
// the buffer has fully drained or an error occurred. data must stay
// valid and unmodified until then.
func (r *Reactor) RequestOutputTransfer(fd Descriptor, data []byte, cb OutputCallback) (*Operation, error) {
	if len(data) == 0 {
		return nil, errors.New("axio: output transfer needs a non-empty buffer")
	}

	op := &Operation{output: cb, data: data}
	if err := r.enqueue(entryKey{fd: fd, kind: transferOutput}, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (r *Reactor) enqueue(key entryKey, op *Operation) error {
	if r.closed {
		return ErrReactorClosed
	}

	e, ok := r.entries[key]
	if !ok {
		state, err := r.newEntryState(key)
		if err != nil {
			return err
		}
		e = newFunctionEntry(key, state)
		// monitor entries scan most recent first, transfer entries
		// oldest first
		if key.kind.isMonitor() {
			e.elem = r.registry.PushFront(e)
		} else {
			e.elem = r.registry.PushBack(e)
		}
		r.entries[key] = e
	}

	e.ops.Add(op)
	op.entry = e
	r.pending++

	// the sole operation in an entry starts right away; a start
	// failure parks the result on the operation for the next tick
	// instead of calling back synchronously
	if e.ops.Length() == 1 {
		r.startHead(e)
	}
	return nil
}

func (r *Reactor) newEntryState(key entryKey) (*internal.DescriptorState, error) {
	state, err := internal.NewDescriptorState()
	if err != nil {
		err = errors.Wrap(err, "axio: descriptor state")
		r.logger.Error("request failed", zap.Error(err))
		return nil, err
	}
	return state, nil
}

// Cancel removes the operation. A not-yet-serviced operation is
// removed immediately and its callback never runs; an operation
// cancelling itself from inside its own callback is removed the moment
// the callback returns, overriding its verdict. Cancelling an
// already-removed handle is a no-op.
func (r *Reactor) Cancel(op *Operation) {
	e := op.entry
	if e == nil || r.closed {
		return
	}
	if op.active {
		op.cancel = true
		return
	}
	if e.head() == op {
		e.state.Abort(e.key.fd)
	}
	r.remove(e, op)
}
