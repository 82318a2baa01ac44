package axio

import "github.com/valyala/bytebufferpool"

// Operation is one outstanding asynchronous request, returned by the
// Request calls as an opaque handle. It stays valid until removed: by
// Cancel, by a monitor callback returning Stop, or by error/eof on a
// transfer. Touching a removed handle other than through Cancel is
// undefined.
type Operation struct {
	entry *functionEntry

	finished bool // result populated, callback due (or leftover input pending)
	active   bool // callback currently running
	cancel   bool // cancel requested from inside the callback
	err      error

	monitor MonitorCallback
	input   InputCallback
	output  OutputCallback

	// transfer window: for input, data is the full-capacity buffer and
	// length the filled prefix; for output, data is the caller's buffer
	// and length the bytes written so far
	buf    *bytebufferpool.ByteBuffer
	data   []byte
	length int
	eof    bool
}

// release returns pooled resources; the operation is dead afterwards.
func (op *Operation) release() {
	op.entry = nil
	op.data = nil
	if op.buf != nil {
		bytebufferpool.Put(op.buf)
		op.buf = nil
	}
}

// remaining is the unwritten suffix of an output transfer or the
// unfilled suffix of an input transfer.
func (op *Operation) remaining() []byte {
	return op.data[op.length:]
}
