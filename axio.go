// Package axio is a single-threaded asynchronous I/O reactor. Callers
// submit monitor and transfer requests against non-blocking
// descriptors and drive completion callbacks by ticking the reactor;
// one tick waits on the platform's multiplexing primitive with a
// bounded timeout and services at most one ready operation.
//
// Every structure except Event is confined to the thread that owns the
// Reactor. Event is the one sanctioned cross-thread door: any thread
// may signal it, and the owning thread observes the signal as an
// ordinary monitor callback during a tick.
package axio
