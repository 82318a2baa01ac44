package axio

import (
	"time"

	"go.uber.org/zap"

	"github.com/dotfield/axio/internal"
)

// outcome is the dispatcher's disposition of a serviced operation
// after its callback returned.
type outcome int8

const (
	outcomeRemove  outcome = iota // delete the operation
	outcomeRestart                // rearm against the platform, rotate entry
	outcomeRedo                   // leftover input: redeliver next tick
)

// runOne is one reactor tick: service a head operation that already
// finished, or build the monitor set from every waitable head, wait,
// and service the first ready entry in registry order. At most one
// operation is serviced per call.
func (r *Reactor) runOne(timeoutMs int) bool {
	if r.closed {
		return false
	}

	// leftover input and failed starts carry results from a previous
	// tick; deliver those before going anywhere near the platform
	if e := r.finishedEntry(); e != nil {
		return r.service(e)
	}

	r.monitor.Begin(r.registry.Len())
	for el := r.registry.Front(); el != nil; el = el.Next() {
		e := el.Value.(*functionEntry)
		e.armed = false
		head := e.head()
		if head == nil || head.active || head.finished {
			continue
		}
		e.slot = r.monitor.Add(e.key.fd, e.state, e.key.kind.interest())
		e.armed = true
	}

	if err := r.monitor.Wait(timeoutMs); err != nil {
		if err != internal.ErrTimeout {
			r.logger.Warn("monitor wait failed", zap.Error(err))
		}
		return false
	}

	// servicing may rotate or remove the entry, so the scan walks
	// captured next pointers; a wakeup the platform reneges on keeps
	// the scan going instead of charging the caller with work
	for el := r.registry.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*functionEntry)
		if e.armed && r.monitor.Test(e.slot) {
			if r.service(e) {
				return true
			}
		}
		el = next
	}
	return false
}

// finishedEntry returns the first entry whose head operation already
// holds a result, in the same order the ready scan uses.
func (r *Reactor) finishedEntry() *functionEntry {
	for el := r.registry.Front(); el != nil; el = el.Next() {
		e := el.Value.(*functionEntry)
		if head := e.head(); head != nil && head.finished && !head.active {
			return e
		}
	}
	return nil
}

// service runs the platform completion step and callback for a head
// operation, reporting whether any work was done. A spurious wakeup
// (would-block with no progress) only rearms the operation and counts
// as no work.
func (r *Reactor) service(e *functionEntry) bool {
	op := e.head()
	e.armed = false

	var started time.Time
	if r.stats != nil {
		started = time.Now()
	}

	if !op.finished {
		progressBefore := op.length
		r.finish(e, op)
		if !op.finished {
			// partial output progress or a spurious wakeup; no user
			// callback for either
			r.restart(e, op)
			if op.length == progressBefore {
				return false
			}
			if r.stats != nil {
				r.stats.record(time.Since(started))
			}
			return true
		}
	}

	op.active = true
	verdict := r.invoke(e, op)
	op.active = false

	if op.cancel {
		verdict = outcomeRemove
	}

	switch verdict {
	case outcomeRemove:
		r.remove(e, op)
	case outcomeRestart:
		r.restart(e, op)
	case outcomeRedo:
		// already-finished head; the next tick redelivers without
		// waiting on the platform
	}

	if r.stats != nil {
		r.stats.record(time.Since(started))
	}
	return true
}

// finish runs the platform completion step for a ready operation:
// monitors just carry the notification, transfers do the actual read
// or write. A transfer stays unfinished when the platform made partial
// progress (output) or reneged on readiness.
func (r *Reactor) finish(e *functionEntry, op *Operation) {
	switch {
	case e.key.kind.isMonitor():
		op.finished = true

	case e.key.kind == transferInput:
		n, eof, err := e.state.FinishRead(e.key.fd, op.remaining())
		if err == internal.ErrWouldBlock {
			return
		}
		op.length += n
		op.eof = eof
		op.err = err
		op.finished = true

	default: // transferOutput
		n, err := e.state.FinishWrite(e.key.fd, op.remaining())
		if err == internal.ErrWouldBlock {
			return
		}
		op.length += n
		if err != nil {
			op.err = err
			op.finished = true
			return
		}
		if op.length == len(op.data) {
			op.finished = true
		}
	}
}

// invoke runs the callback and translates its result into the
// dispatcher's verdict.
func (r *Reactor) invoke(e *functionEntry, op *Operation) outcome {
	switch {
	case e.key.kind.isMonitor():
		if op.monitor(op.err) == Stop {
			return outcomeRemove
		}
		return outcomeRestart

	case e.key.kind == transferInput:
		consumed := op.input(op.data[:op.length], len(op.data), op.err, op.eof)
		if op.err != nil || op.eof {
			return outcomeRemove
		}
		if consumed < 0 {
			consumed = 0
		}
		if consumed > op.length {
			consumed = op.length
		}
		if consumed > 0 {
			copy(op.data, op.data[consumed:op.length])
			op.length -= consumed
		}
		switch {
		case op.length == 0:
			// fully drained, back to the platform for more
			return outcomeRestart
		case consumed == 0 && op.length < len(op.data):
			// "not enough yet": hold the prefix and wait for new data
			return outcomeRestart
		default:
			// unconsumed remainder (or a full buffer the callback must
			// drain): redeliver next tick
			return outcomeRedo
		}

	default: // transferOutput
		op.output(op.err)
		return outcomeRemove
	}
}

// restart rearms an operation against the platform and rotates its
// entry to the back of the registry for round-robin fairness.
func (r *Reactor) restart(e *functionEntry, op *Operation) {
	op.finished = false
	op.err = nil
	op.eof = false

	if err := r.start(e, op); err != nil {
		op.finished = true
		op.err = err
	}
	r.registry.MoveToBack(e.elem)
}

// start issues the platform action for a head operation. On readiness
// platforms this is a no-op; on overlapped platforms it begins the
// transfer. Failure is not delivered here: the operation is marked
// finished-with-error and the next tick's finished-head path invokes
// the callback, so callbacks only ever run from inside a tick.
func (r *Reactor) start(e *functionEntry, op *Operation) error {
	switch {
	case e.key.kind.isMonitor():
		return nil
	case e.key.kind == transferInput:
		return e.state.StartRead(e.key.fd, op.remaining())
	default:
		return e.state.StartWrite(e.key.fd, op.remaining())
	}
}

func (r *Reactor) startHead(e *functionEntry) {
	op := e.head()
	if err := r.start(e, op); err != nil {
		op.finished = true
		op.err = err
	}
}

// remove deletes the operation, the entry too once its queue empties,
// and otherwise starts the next operation in line.
func (r *Reactor) remove(e *functionEntry, op *Operation) {
	wasHead := e.head() == op
	e.remove(op)
	op.release()
	r.pending--

	if e.empty() {
		r.registry.Remove(e.elem)
		delete(r.entries, e.key)
		e.state.Close()
		return
	}
	if wasHead {
		r.startHead(e)
	}
}
