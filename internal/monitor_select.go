//go:build (darwin || netbsd || freebsd || openbsd || dragonfly || linux) && axio_select

package internal

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// selectSet multiplexes with select(2), for platforms or builds where
// poll is unavailable. Input maps to the read set, output to the write
// set and alert to the exception set. select mutates its sets in
// place, so they are rebuilt from the entry list on every wait attempt.
type selectSet struct {
	entries []selectEntry

	read, write, except unix.FdSet
	nfds                int
}

type selectEntry struct {
	fd       Descriptor
	interest Interest
}

func NewMonitorSet() (MonitorSet, error) {
	return &selectSet{entries: make([]selectEntry, 0, 8)}, nil
}

func (s *selectSet) Begin(capacity int) {
	if cap(s.entries) < capacity {
		s.entries = make([]selectEntry, 0, capacity)
	}
	s.entries = s.entries[:0]
}

func (s *selectSet) Add(fd Descriptor, _ *DescriptorState, interest Interest) int {
	s.entries = append(s.entries, selectEntry{fd: fd, interest: interest})
	return len(s.entries) - 1
}

func (s *selectSet) build() {
	s.read.Zero()
	s.write.Zero()
	s.except.Zero()
	s.nfds = 0

	for _, e := range s.entries {
		switch e.interest {
		case InterestInput:
			s.read.Set(e.fd)
		case InterestOutput:
			s.write.Set(e.fd)
		case InterestAlert:
			s.except.Set(e.fd)
		}
		if e.fd+1 > s.nfds {
			s.nfds = e.fd + 1
		}
	}
}

func (s *selectSet) Wait(timeoutMs int) error {
	// the caller's bound goes to the kernel untouched; the deadline
	// only matters when an interrupted wait has to be resumed
	remaining := time.Duration(timeoutMs) * time.Millisecond
	var deadline time.Time
	if timeoutMs > 0 {
		deadline = time.Now().Add(remaining)
	}

	for {
		s.build()

		var tv *unix.Timeval
		if timeoutMs >= 0 {
			t := unix.NsecToTimeval(remaining.Nanoseconds())
			tv = &t
		}

		n, err := unix.Select(s.nfds, &s.read, &s.write, &s.except, tv)
		if err == unix.EINTR {
			if timeoutMs > 0 {
				remaining = time.Until(deadline)
				if remaining < 0 {
					remaining = 0
				}
			}
			continue
		}
		if err != nil {
			return os.NewSyscallError("select", err)
		}
		if n == 0 && timeoutMs >= 0 {
			return ErrTimeout
		}
		return nil
	}
}

func (s *selectSet) Test(slot int) bool {
	e := s.entries[slot]
	switch e.interest {
	case InterestInput:
		// error conditions on a read descriptor also surface here
		return s.read.IsSet(e.fd) || s.except.IsSet(e.fd)
	case InterestOutput:
		return s.write.IsSet(e.fd) || s.except.IsSet(e.fd)
	default:
		return s.except.IsSet(e.fd)
	}
}

func (s *selectSet) Close() error { return nil }
