package axio

import (
	"errors"

	"github.com/dotfield/axio/internal"
)

var (
	// ErrWouldBlock reports a descriptor with no capacity right now.
	ErrWouldBlock = internal.ErrWouldBlock

	// ErrTimeout reports a tick that expired without work.
	ErrTimeout = internal.ErrTimeout

	// ErrReactorClosed reports a request against a closed reactor.
	ErrReactorClosed = errors.New("reactor closed")

	// ErrEventDestroyed reports a signal against a destroyed event.
	ErrEventDestroyed = errors.New("event destroyed")
)
