package internal

// Interest selects the readiness condition a monitored descriptor is
// waited on for.
type Interest int8

const (
	InterestInput Interest = iota
	InterestOutput
	InterestAlert
)

// MonitorSet is one platform's multiplexing primitive behind a single
// build/wait/test capability. The dispatcher rebuilds the set every
// tick from the head operation of each function entry:
//
//	set.Begin(n)
//	slot := set.Add(fd, state, interest) // once per waitable head
//	err := set.Wait(timeoutMs)           // ErrTimeout when nothing is ready
//	ready := set.Test(slot)
//
// Implementations must retry interrupted waits internally against the
// original deadline; the dispatcher never sees EINTR.
type MonitorSet interface {
	// Begin resets the set, hinting the number of entries about to be
	// added.
	Begin(capacity int)

	// Add appends one waitable entry and returns its slot index, valid
	// until the next Begin. The descriptor state carries platform
	// context for entries whose readiness is signalled out of band
	// (overlapped I/O); readiness platforms ignore it.
	Add(fd Descriptor, state *DescriptorState, interest Interest) int

	// Wait blocks until an entry is ready or timeoutMs elapses.
	// timeoutMs == 0 polls, negative waits indefinitely.
	Wait(timeoutMs int) error

	// Test reports whether the entry at the given slot is ready. Error
	// and hangup conditions count as ready; the transfer finish step
	// surfaces the actual error.
	Test(slot int) bool

	Close() error
}
