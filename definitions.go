package axio

import "github.com/dotfield/axio/internal"

// Descriptor identifies a platform I/O object: a file descriptor on
// unix, a handle on windows. Descriptors handed to the reactor must be
// non-blocking.
type Descriptor = internal.Descriptor

// Action is a monitor callback's verdict: Continue rearms the
// operation, Stop removes it. It is deliberately distinct from the
// consumed-byte count an input callback returns.
type Action int8

const (
	Continue Action = iota
	Stop
)

// Role selects the readiness condition a monitor waits for.
type Role int8

const (
	Input Role = iota
	Output
	Alert
)

func (r Role) String() string {
	switch r {
	case Input:
		return "input"
	case Output:
		return "output"
	case Alert:
		return "alert"
	}
	return "unknown"
}

// MonitorCallback runs once per readiness notification. err is the
// descriptor error attached to the operation, nil otherwise.
type MonitorCallback func(err error) Action

// InputCallback receives the filled prefix of the transfer buffer and
// returns how many leading bytes it consumed. Returning 0 means "not
// enough yet": the operation keeps its buffered prefix and waits for
// more data. Consumed bytes are shifted out; any remainder is
// redelivered on the very next tick without touching the platform.
// An error or eof removes the operation after the call regardless of
// the return value.
//
// The buffer is owned by the operation and must not be retained.
type InputCallback func(data []byte, capacity int, err error, eof bool) int

// OutputCallback runs exactly once, when the whole buffer has been
// written or an error occurred. There is no partial-progress call.
type OutputCallback func(err error)

// EventCallback receives one signalled word, on the reactor thread.
type EventCallback func(word uint64)
