//go:build darwin || netbsd || freebsd || openbsd || dragonfly || linux

package internal

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/unix"
)

const signalWordSize = 8

// SignalChannel is the transport under an event: a private pipe whose
// read side is monitored by the owning reactor. One Post is one
// 8-byte write, which the kernel keeps atomic for writes below
// PIPE_BUF, so concurrent signallers never interleave words. Both ends
// are non-blocking; a full pipe fails the Post rather than stalling
// the signalling thread.
type SignalChannel struct {
	p [2]int
}

func NewSignalChannel() (*SignalChannel, error) {
	c := &SignalChannel{}
	if err := unix.Pipe(c.p[:]); err != nil {
		return nil, os.NewSyscallError("pipe", err)
	}
	for _, fd := range c.p {
		if err := unix.SetNonblock(fd, true); err != nil {
			c.Close()
			return nil, os.NewSyscallError("pipe set_nonblock", err)
		}
	}
	return c, nil
}

// Descriptor returns the read side, registered as an input monitor.
func (c *SignalChannel) Descriptor() Descriptor {
	return c.p[0]
}

// Post writes one word. Safe to call from any thread.
func (c *SignalChannel) Post(word uint64) error {
	var b [signalWordSize]byte
	binary.LittleEndian.PutUint64(b[:], word)

	n, err := unix.Write(c.p[1], b[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return ErrWouldBlock
		}
		return os.NewSyscallError("signal write", err)
	}
	if n != signalWordSize {
		// cannot happen while the word fits in PIPE_BUF
		return os.NewSyscallError("signal write", unix.EIO)
	}
	return nil
}

// Receive reads exactly one word, ErrWouldBlock when none is pending.
func (c *SignalChannel) Receive() (uint64, error) {
	var b [signalWordSize]byte
	n, err := unix.Read(c.p[0], b[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		return 0, os.NewSyscallError("signal read", err)
	}
	if n != signalWordSize {
		return 0, os.NewSyscallError("signal read", unix.EIO)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (c *SignalChannel) Close() error {
	err := unix.Close(c.p[0])
	if e := unix.Close(c.p[1]); err == nil {
		err = e
	}
	return err
}
