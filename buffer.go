package csvstream

import (
	"context"
	"errors"
	"io"
)

// buffer owns the bytes fetched from a Source and a read cursor over them.
// Refills happen only in ensure, which is the single suspension point of the
// read path.
type buffer struct {
	data      []byte
	pos       int
	exhausted bool
	chunk     []byte
}

func newBuffer(chunkSize int) buffer {
	return buffer{
		data:  make([]byte, 0, chunkSize*2),
		chunk: make([]byte, chunkSize),
	}
}

func (b *buffer) unread() int {
	return len(b.data) - b.pos
}

// next pops the byte under the cursor. The second return is false when the
// buffer holds no unread bytes.
func (b *buffer) next() (byte, bool) {
	if b.pos >= len(b.data) {
		return 0, false
	}
	c := b.data[b.pos]
	b.pos++
	return c, true
}

// ensure refills from src until at least min unread bytes are buffered or
// the source is exhausted. Once exhausted it is a no-op.
func (b *buffer) ensure(ctx context.Context, src Source, min int) error {
	for b.unread() < min && !b.exhausted {
		n, err := src.Read(ctx, b.chunk)
		if n > 0 {
			b.compact()
			b.data = append(b.data, b.chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.exhausted = true
				return nil
			}
			return &IOError{Op: "read", Err: err}
		}
	}
	return nil
}

// compact drops consumed bytes once the cursor has moved past half the
// buffer, keeping growth bounded on long streams.
func (b *buffer) compact() {
	if b.pos == 0 || b.pos < cap(b.data)/2 {
		return
	}
	n := copy(b.data, b.data[b.pos:])
	b.data = b.data[:n]
	b.pos = 0
}
