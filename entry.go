package axio

import (
	"container/list"

	"github.com/eapache/queue"

	"github.com/dotfield/axio/internal"
)

// funcKind is the role table of a function entry: what the platform is
// asked to do for the descriptor. Monitors and transfers on the same
// descriptor live in separate entries.
type funcKind int8

const (
	monitorInput funcKind = iota
	monitorOutput
	monitorAlert
	transferInput
	transferOutput
)

func monitorKind(role Role) funcKind {
	switch role {
	case Output:
		return monitorOutput
	case Alert:
		return monitorAlert
	default:
		return monitorInput
	}
}

func (k funcKind) isMonitor() bool {
	return k <= monitorAlert
}

func (k funcKind) interest() internal.Interest {
	switch k {
	case monitorOutput, transferOutput:
		return internal.InterestOutput
	case monitorAlert:
		return internal.InterestAlert
	default:
		return internal.InterestInput
	}
}

type entryKey struct {
	fd   Descriptor
	kind funcKind
}

// functionEntry groups every operation sharing one (descriptor, role)
// pair. Operations are serviced strictly FIFO; only the head is ever
// started or offered to the monitor set. The entry owns the platform
// state for its descriptor and lives exactly as long as its queue is
// non-empty.
type functionEntry struct {
	key   entryKey
	ops   *queue.Queue
	state *internal.DescriptorState

	elem *list.Element // position in the reactor registry

	// per-tick monitor set slot
	slot  int
	armed bool
}

func newFunctionEntry(key entryKey, state *internal.DescriptorState) *functionEntry {
	return &functionEntry{
		key:   key,
		ops:   queue.New(),
		state: state,
	}
}

func (e *functionEntry) head() *Operation {
	if e.ops.Length() == 0 {
		return nil
	}
	return e.ops.Peek().(*Operation)
}

func (e *functionEntry) empty() bool {
	return e.ops.Length() == 0
}

// remove deletes op wherever it sits. Cancelling a queued operation is
// rare enough that the ring is simply rebuilt without it.
func (e *functionEntry) remove(op *Operation) {
	if e.head() == op {
		e.ops.Remove()
		return
	}
	for n := e.ops.Length(); n > 0; n-- {
		cur := e.ops.Remove().(*Operation)
		if cur != op {
			e.ops.Add(cur)
		}
	}
}
