//go:build windows

package internal

import (
	"os"
	"sync"

	"golang.org/x/sys/windows"
)

// SignalChannel is the transport under an event. Windows has a native
// countable waitable primitive, so instead of a pipe the words sit in
// a guarded queue behind an event handle that is set on the 0->1
// transition and cleared when the last word is drained. The handle is
// what the reactor's monitor set waits on.
type SignalChannel struct {
	event windows.Handle

	mu     sync.Mutex
	words  []uint64
	closed bool
}

func NewSignalChannel() (*SignalChannel, error) {
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, os.NewSyscallError("create_event", err)
	}
	return &SignalChannel{event: event}, nil
}

// Descriptor returns the waitable handle, registered as an input
// monitor.
func (c *SignalChannel) Descriptor() Descriptor {
	return c.event
}

// Post queues one word. Safe to call from any thread.
func (c *SignalChannel) Post(word uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return os.ErrClosed
	}
	c.words = append(c.words, word)
	if len(c.words) == 1 {
		if err := windows.SetEvent(c.event); err != nil {
			c.words = c.words[:0]
			return os.NewSyscallError("set_event", err)
		}
	}
	return nil
}

// Receive pops one word, ErrWouldBlock when none is pending.
func (c *SignalChannel) Receive() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.words) == 0 {
		return 0, ErrWouldBlock
	}
	word := c.words[0]
	c.words = c.words[1:]
	if len(c.words) == 0 {
		if err := windows.ResetEvent(c.event); err != nil {
			return word, os.NewSyscallError("reset_event", err)
		}
	}
	return word, nil
}

func (c *SignalChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return os.ErrClosed
	}
	c.closed = true
	c.words = nil
	return windows.CloseHandle(c.event)
}
