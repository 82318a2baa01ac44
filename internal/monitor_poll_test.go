//go:build (darwin || netbsd || freebsd || openbsd || dragonfly || linux) && !axio_select

package internal

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func testPipe(t *testing.T) (rfd, wfd int) {
	t.Helper()
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	return p[0], p[1]
}

func TestPollSetTimeout(t *testing.T) {
	set, err := NewMonitorSet()
	if err != nil {
		t.Fatal(err)
	}
	defer set.Close()

	set.Begin(0)
	start := time.Now()
	if err := set.Wait(10); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Fatalf("wait returned early: %v", elapsed)
	}
}

func TestPollSetReadiness(t *testing.T) {
	set, err := NewMonitorSet()
	if err != nil {
		t.Fatal(err)
	}
	defer set.Close()

	rfd, wfd := testPipe(t)

	set.Begin(1)
	slot := set.Add(rfd, nil, InterestInput)
	if err := set.Wait(0); err != ErrTimeout {
		t.Fatalf("empty pipe should time out, got %v", err)
	}

	if _, err := unix.Write(wfd, []byte("x")); err != nil {
		t.Fatal(err)
	}

	set.Begin(1)
	slot = set.Add(rfd, nil, InterestInput)
	if err := set.Wait(100); err != nil {
		t.Fatal(err)
	}
	if !set.Test(slot) {
		t.Fatal("readable descriptor should test ready")
	}
}

func TestPollSetWritability(t *testing.T) {
	set, err := NewMonitorSet()
	if err != nil {
		t.Fatal(err)
	}
	defer set.Close()

	_, wfd := testPipe(t)

	set.Begin(1)
	slot := set.Add(wfd, nil, InterestOutput)
	if err := set.Wait(100); err != nil {
		t.Fatal(err)
	}
	if !set.Test(slot) {
		t.Fatal("empty pipe should be writable")
	}
}
