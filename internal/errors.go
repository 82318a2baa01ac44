package internal

import "errors"

var (
	ErrWouldBlock = errors.New("operation would block")
	ErrTimeout    = errors.New("operation timed out")
)
