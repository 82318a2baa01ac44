//go:build (darwin || netbsd || freebsd || openbsd || dragonfly || linux) && !axio_select

package internal

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// pollSet multiplexes with poll(2). The descriptor array is rebuilt by
// the dispatcher every tick, which is what poll expects anyway; there
// is no persistent kernel registration to maintain.
type pollSet struct {
	fds []unix.PollFd
}

func NewMonitorSet() (MonitorSet, error) {
	return &pollSet{fds: make([]unix.PollFd, 0, 8)}, nil
}

func (s *pollSet) Begin(capacity int) {
	if cap(s.fds) < capacity {
		s.fds = make([]unix.PollFd, 0, capacity)
	}
	s.fds = s.fds[:0]
}

func (s *pollSet) Add(fd Descriptor, _ *DescriptorState, interest Interest) int {
	var events int16
	switch interest {
	case InterestInput:
		events = unix.POLLIN
	case InterestOutput:
		events = unix.POLLOUT
	case InterestAlert:
		events = unix.POLLPRI
	}
	s.fds = append(s.fds, unix.PollFd{Fd: int32(fd), Events: events})
	return len(s.fds) - 1
}

func (s *pollSet) Wait(timeoutMs int) error {
	// the caller's bound goes to the kernel untouched; the deadline
	// only matters when an interrupted wait has to be resumed
	remaining := timeoutMs
	var deadline time.Time
	if timeoutMs > 0 {
		deadline = time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	}

	for {
		n, err := unix.Poll(s.fds, remaining)
		if err == unix.EINTR {
			if timeoutMs > 0 {
				// round up: a retried wait must never undercut the bound
				remaining = int((time.Until(deadline) + time.Millisecond - 1) / time.Millisecond)
				if remaining < 0 {
					remaining = 0
				}
			}
			continue
		}
		if err != nil {
			return os.NewSyscallError("poll", err)
		}
		if n == 0 && timeoutMs >= 0 {
			return ErrTimeout
		}
		return nil
	}
}

func (s *pollSet) Test(slot int) bool {
	fd := &s.fds[slot]
	return fd.Revents&(fd.Events|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
}

func (s *pollSet) Close() error { return nil }
