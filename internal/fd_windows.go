//go:build windows

package internal

import (
	"os"

	"golang.org/x/sys/windows"
)

// Descriptor identifies one platform I/O object: a file descriptor on
// unix, a handle on windows.
type Descriptor = windows.Handle

// DescriptorState is the persistent per-(descriptor, role) platform
// context owned by a function entry. On windows a transfer is started
// up front as overlapped I/O; the completion event carried here is
// what the monitor set waits on, and the finish step collects the
// result with GetOverlappedResult.
type DescriptorState struct {
	overlapped windows.Overlapped
	event      windows.Handle
	started    bool
}

func NewDescriptorState() (*DescriptorState, error) {
	// manual reset: the event stays signalled until the finish step
	// collects the result
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, os.NewSyscallError("create_event", err)
	}
	return &DescriptorState{event: event}, nil
}

// Event returns the waitable completion handle, or 0 for a state with
// no transfer in flight.
func (s *DescriptorState) Event() windows.Handle {
	if s.started {
		return s.event
	}
	return 0
}

func (s *DescriptorState) StartRead(fd Descriptor, b []byte) error {
	return s.start(fd, b, true)
}

func (s *DescriptorState) StartWrite(fd Descriptor, b []byte) error {
	return s.start(fd, b, false)
}

func (s *DescriptorState) start(fd Descriptor, b []byte, read bool) error {
	if err := windows.ResetEvent(s.event); err != nil {
		return os.NewSyscallError("reset_event", err)
	}
	s.overlapped = windows.Overlapped{HEvent: s.event}

	var err error
	var done uint32
	if read {
		err = windows.ReadFile(fd, b, &done, &s.overlapped)
	} else {
		err = windows.WriteFile(fd, b, &done, &s.overlapped)
	}
	// an immediate completion still signals the event, so both paths
	// converge on the finish step
	if err != nil && err != windows.ERROR_IO_PENDING {
		return os.NewSyscallError("overlapped_start", err)
	}
	s.started = true
	return nil
}

func (s *DescriptorState) FinishRead(fd Descriptor, b []byte) (int, bool, error) {
	n, err := s.finish(fd)
	if err == windows.ERROR_HANDLE_EOF || err == windows.ERROR_BROKEN_PIPE {
		return n, true, nil
	}
	if err != nil {
		if err == ErrWouldBlock {
			return n, false, err
		}
		return n, false, os.NewSyscallError("overlapped_read", err)
	}
	return n, false, nil
}

func (s *DescriptorState) FinishWrite(fd Descriptor, b []byte) (int, error) {
	n, err := s.finish(fd)
	if err != nil {
		if err == ErrWouldBlock {
			return n, err
		}
		return n, os.NewSyscallError("overlapped_write", err)
	}
	return n, nil
}

func (s *DescriptorState) finish(fd Descriptor) (int, error) {
	s.started = false
	var done uint32
	if e := windows.GetOverlappedResult(fd, &s.overlapped, &done, false); e != nil {
		if e == windows.ERROR_IO_INCOMPLETE {
			return 0, ErrWouldBlock
		}
		return int(done), e
	}
	return int(done), nil
}

func (s *DescriptorState) Abort(fd Descriptor) {
	if s.started {
		_ = windows.CancelIoEx(fd, &s.overlapped)
		s.started = false
	}
}

func (s *DescriptorState) Close() {
	_ = windows.CloseHandle(s.event)
}

// SetNonblock is a no-op on windows; overlapped handles do not block
// the reactor thread.
func SetNonblock(Descriptor) error { return nil }
