//go:build darwin || netbsd || freebsd || openbsd || dragonfly || linux

package internal

import (
	"os"

	"golang.org/x/sys/unix"
)

// Descriptor identifies one platform I/O object: a file descriptor on
// unix, a handle on windows.
type Descriptor = int

// DescriptorState is the persistent per-(descriptor, role) platform
// context owned by a function entry. Readiness platforms perform the
// actual transfer in the finish step, after the monitor set reports the
// descriptor ready, so there is nothing to start, abort or keep here.
type DescriptorState struct{}

func NewDescriptorState() (*DescriptorState, error) {
	return &DescriptorState{}, nil
}

func (*DescriptorState) StartRead(Descriptor, []byte) error  { return nil }
func (*DescriptorState) StartWrite(Descriptor, []byte) error { return nil }
func (*DescriptorState) Abort(Descriptor)                    {}
func (*DescriptorState) Close()                              {}

// FinishRead reads into b once the descriptor reported ready. It
// returns ErrWouldBlock on a spurious wakeup and eof == true when the
// peer closed.
func (*DescriptorState) FinishRead(fd Descriptor, b []byte) (n int, eof bool, err error) {
	n, err = unix.Read(fd, b)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, false, ErrWouldBlock
		}
		return 0, false, os.NewSyscallError("read", err)
	}
	if n == 0 && len(b) > 0 {
		return 0, true, nil
	}
	return n, false, nil
}

// FinishWrite writes as much of b as the descriptor accepts.
func (*DescriptorState) FinishWrite(fd Descriptor, b []byte) (int, error) {
	n, err := unix.Write(fd, b)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		return 0, os.NewSyscallError("write", err)
	}
	return n, nil
}

// SetNonblock puts the descriptor in non-blocking mode. Every
// descriptor handed to the reactor must be non-blocking.
func SetNonblock(fd Descriptor) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return os.NewSyscallError("set_nonblock", err)
	}
	return nil
}
