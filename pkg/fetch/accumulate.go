package fetch

// accumulator collects response chunks into one contiguous buffer. When the
// total transfer length is known up front the backing array is allocated
// once, so large transfers never pay for repeated growth; otherwise it grows
// by appending.
type accumulator struct {
	// known reports whether the total length was declared
	known bool

	// total is the declared length, valid only when known
	total int64

	// buf holds the bytes received so far
	buf []byte
}

// newAccumulator sizes the accumulator from a response content length.
// A negative content length means the total is unknown.
func newAccumulator(contentLength int64) *accumulator {
	if contentLength >= 0 {
		return &accumulator{known: true, total: contentLength, buf: make([]byte, 0, contentLength)}
	}
	return &accumulator{}
}

// append adds a received chunk.
func (a *accumulator) append(p []byte) {
	a.buf = append(a.buf, p...)
}

// received returns the number of bytes accumulated so far.
func (a *accumulator) received() int64 {
	return int64(len(a.buf))
}

// bytes returns the accumulated buffer.
func (a *accumulator) bytes() []byte {
	return a.buf
}
