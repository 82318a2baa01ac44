//go:build windows

package internal

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// waitSet multiplexes with WaitForMultipleObjects. Transfers are
// represented by their overlapped completion event; monitors and
// signal channels wait on the descriptor handle itself. At most one
// entry is reported ready per wait, which matches the dispatcher's
// one-operation-per-tick contract.
//
// The kernel caps one wait at MAXIMUM_WAIT_OBJECTS (64) handles, so a
// reactor on this backend is limited to 64 simultaneously waitable
// entries. Wait reports the overflow as an error instead of letting
// every tick fail with WAIT_FAILED.
type waitSet struct {
	handles []windows.Handle
	ready   int
}

// kernel cap for one WaitForMultipleObjects call
const maximumWaitObjects = 64

var errTooManyHandles = errors.New("more waitable entries than MAXIMUM_WAIT_OBJECTS (64)")

func NewMonitorSet() (MonitorSet, error) {
	return &waitSet{handles: make([]windows.Handle, 0, 8)}, nil
}

func (s *waitSet) Begin(capacity int) {
	if cap(s.handles) < capacity {
		s.handles = make([]windows.Handle, 0, capacity)
	}
	s.handles = s.handles[:0]
	s.ready = -1
}

func (s *waitSet) Add(fd Descriptor, state *DescriptorState, _ Interest) int {
	h := fd
	if state != nil {
		if ev := state.Event(); ev != 0 {
			h = ev
		}
	}
	s.handles = append(s.handles, h)
	return len(s.handles) - 1
}

func (s *waitSet) Wait(timeoutMs int) error {
	if len(s.handles) > maximumWaitObjects {
		return errTooManyHandles
	}
	if len(s.handles) == 0 {
		if timeoutMs < 0 {
			return os.ErrInvalid
		}
		time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
		return ErrTimeout
	}

	timeout := uint32(windows.INFINITE)
	if timeoutMs >= 0 {
		timeout = uint32(timeoutMs)
	}

	event, err := windows.WaitForMultipleObjects(s.handles, false, timeout)
	switch {
	case err != nil:
		return os.NewSyscallError("wait_for_multiple_objects", err)
	case event == uint32(windows.WAIT_TIMEOUT):
		return ErrTimeout
	case event >= uint32(windows.WAIT_OBJECT_0) && event < uint32(windows.WAIT_OBJECT_0)+uint32(len(s.handles)):
		s.ready = int(event - uint32(windows.WAIT_OBJECT_0))
		return nil
	default:
		return os.NewSyscallError("wait_for_multiple_objects", windows.GetLastError())
	}
}

func (s *waitSet) Test(slot int) bool {
	return slot == s.ready
}

func (s *waitSet) Close() error { return nil }
