//go:build darwin || netbsd || freebsd || openbsd || dragonfly || linux

package axio

import (
	"testing"

	"golang.org/x/sys/unix"
)

func drain(t *testing.T, fd int) {
	t.Helper()
	b := make([]byte, 64)
	for {
		n, err := unix.Read(fd, b)
		if err != nil || n <= 0 {
			return
		}
	}
}

func TestMonitorFiresAndRearms(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	rfd, wfd := pipePair(t)

	fires := 0
	op, err := ioc.RequestMonitor(rfd, Input, func(err error) Action {
		if err != nil {
			t.Fatal(err)
		}
		fires++
		drain(t, rfd)
		return Continue
	})
	if err != nil {
		t.Fatal(err)
	}

	mustWrite(t, wfd, []byte("x"))
	if !ioc.RunOneFor(100) {
		t.Fatal("expected the monitor to fire")
	}
	if fires != 1 {
		t.Fatalf("expected 1 fire, got %d", fires)
	}
	if ioc.Poll() {
		t.Fatal("pipe is drained, monitor should not fire again")
	}

	// Continue rearmed it
	mustWrite(t, wfd, []byte("y"))
	if !ioc.RunOneFor(100) {
		t.Fatal("expected the rearmed monitor to fire")
	}
	if fires != 2 {
		t.Fatalf("expected 2 fires, got %d", fires)
	}

	ioc.Cancel(op)
	if ioc.Pending() != 0 {
		t.Fatalf("cancel should remove the monitor, pending=%d", ioc.Pending())
	}
}

func TestMonitorStopRemoves(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	rfd, wfd := pipePair(t)

	fires := 0
	if _, err := ioc.RequestMonitor(rfd, Input, func(error) Action {
		fires++
		return Stop
	}); err != nil {
		t.Fatal(err)
	}

	mustWrite(t, wfd, []byte("x"))
	if !ioc.RunOneFor(100) {
		t.Fatal("expected the monitor to fire")
	}
	if fires != 1 {
		t.Fatalf("expected 1 fire, got %d", fires)
	}
	if ioc.Pending() != 0 {
		t.Fatalf("stop should remove the monitor, pending=%d", ioc.Pending())
	}

	// the pipe is still readable, but nothing is registered anymore
	if ioc.Poll() {
		t.Fatal("removed monitor must not be serviced")
	}
}

// Simultaneously ready monitors are served most recently added first,
// while transfers are served oldest first. The asymmetry is part of
// the dispatch contract.
func TestReadyMonitorsServedMostRecentFirst(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	r1, w1 := pipePair(t)
	r2, w2 := pipePair(t)
	mustWrite(t, w1, []byte("x"))
	mustWrite(t, w2, []byte("x"))

	var order []string
	for _, m := range []struct {
		name string
		fd   int
	}{{"first", r1}, {"second", r2}} {
		name := m.name
		if _, err := ioc.RequestMonitor(m.fd, Input, func(error) Action {
			order = append(order, name)
			return Stop
		}); err != nil {
			t.Fatal(err)
		}
	}

	if !ioc.Poll() || !ioc.Poll() {
		t.Fatal("both monitors are ready, expected two serviced ticks")
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("monitors must be served LIFO, got %v", order)
	}
}

func TestReadyTransfersServedOldestFirst(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	r1, w1 := pipePair(t)
	r2, w2 := pipePair(t)
	mustWrite(t, w1, []byte("x"))
	mustWrite(t, w2, []byte("x"))

	var order []string
	for _, m := range []struct {
		name string
		fd   int
	}{{"first", r1}, {"second", r2}} {
		name := m.name
		if _, err := ioc.RequestInputTransfer(m.fd, 8, func(data []byte, _ int, _ error, _ bool) int {
			order = append(order, name)
			return len(data)
		}); err != nil {
			t.Fatal(err)
		}
	}

	if !ioc.Poll() || !ioc.Poll() {
		t.Fatal("both transfers are ready, expected two serviced ticks")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("transfers must be served FIFO, got %v", order)
	}
}

func TestCancelPendingYieldsNoCallback(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	rfd, wfd := pipePair(t)

	calls := 0
	op, err := ioc.RequestInputTransfer(rfd, 8, func(data []byte, _ int, _ error, _ bool) int {
		calls++
		return len(data)
	})
	if err != nil {
		t.Fatal(err)
	}

	ioc.Cancel(op)
	if ioc.Pending() != 0 {
		t.Fatalf("cancel should remove the operation, pending=%d", ioc.Pending())
	}

	mustWrite(t, wfd, []byte("late"))
	if ioc.Poll() {
		t.Fatal("cancelled operation must not be serviced")
	}
	if calls != 0 {
		t.Fatalf("cancelled operation invoked its callback %d times", calls)
	}
}

func TestCancelQueuedOperation(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	rfd, wfd := pipePair(t)

	if _, err := ioc.RequestOutputTransfer(wfd, []byte("keep."), func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}); err != nil {
		t.Fatal(err)
	}

	second, err := ioc.RequestOutputTransfer(wfd, []byte("drop."), func(error) {
		t.Fatal("cancelled operation invoked its callback")
	})
	if err != nil {
		t.Fatal(err)
	}

	ioc.Cancel(second)
	for ioc.RunOneFor(100) {
	}

	b := make([]byte, 16)
	n, err := unix.Read(rfd, b)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b[:n]); got != "keep." {
		t.Fatalf("sink received %q, want %q", got, "keep.")
	}
}

func TestReentrantCancelFromCallback(t *testing.T) {
	ioc := MustNew()
	defer ioc.Close()

	rfd, wfd := pipePair(t)

	fires := 0
	var op *Operation
	op, err := ioc.RequestMonitor(rfd, Input, func(error) Action {
		fires++
		drain(t, rfd)
		ioc.Cancel(op)
		return Continue // the deferred cancel overrides this
	})
	if err != nil {
		t.Fatal(err)
	}

	mustWrite(t, wfd, []byte("x"))
	if !ioc.RunOneFor(100) {
		t.Fatal("expected the monitor to fire")
	}
	if fires != 1 {
		t.Fatalf("expected 1 fire, got %d", fires)
	}
	if ioc.Pending() != 0 {
		t.Fatalf("self-cancel should remove the operation, pending=%d", ioc.Pending())
	}

	mustWrite(t, wfd, []byte("y"))
	if ioc.Poll() {
		t.Fatal("removed monitor must not fire again")
	}
	if fires != 1 {
		t.Fatalf("expected no further fires, got %d", fires)
	}
}
