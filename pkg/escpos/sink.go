package escpos

import "bytes"

// Sink receives finished command bytes. Implementations are transport
// adapters (files, sockets, spoolers) and live outside this module; the
// synthesis code only ever appends to a Sink.
//
// A Sink is not required to be safe for concurrent use. Callers that share
// one sink between goroutines must serialize access themselves, otherwise
// interleaved command sequences corrupt the stream.
type Sink interface {
	Raw(data []byte) error
}

// Buffer is an in-memory Sink. It collects everything written to it and is
// the sink used by tests and by callers that post-process the stream.
type Buffer struct {
	buf bytes.Buffer
}

// Raw appends data to the buffer. It never fails.
func (b *Buffer) Raw(data []byte) error {
	b.buf.Write(data)
	return nil
}

// Bytes returns the accumulated command stream.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Reset discards the accumulated stream.
func (b *Buffer) Reset() {
	b.buf.Reset()
}
