//go:build darwin || netbsd || freebsd || openbsd || dragonfly || linux

package axio

import (
	"testing"

	"golang.org/x/sys/unix"
)

// pipePair returns a non-blocking pipe, closed on test cleanup.
func pipePair(t *testing.T) (rfd, wfd int) {
	t.Helper()

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatal(err)
	}
	for _, fd := range p {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p[0], p[1]
}

// socketPair returns a non-blocking stream socket pair with a small
// send buffer, so large writes drain across many partial writes.
func socketPair(t *testing.T) (a, b int) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := unix.SetsockoptInt(fds[0], unix.SOL_SOCKET, unix.SO_SNDBUF, 4096); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func mustWrite(t *testing.T, fd int, b []byte) {
	t.Helper()
	n, err := unix.Write(fd, b)
	if err != nil || n != len(b) {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
}
