package csvstream

import (
	"context"
	"io"
	"sync"
)

// Writer renders records and streams them to a Sink. Rendered bytes are
// buffered and flushed once the pending buffer crosses the dialect's chunk
// size, on Flush, and on Close.
//
// Concurrency policy: calls from overlapping goroutines are serialized by an
// internal mutex, so output bytes are never interleaved. Row order matches
// call order.
type Writer struct {
	mu      sync.Mutex
	sink    Sink
	d       *Dialect
	ser     serializer
	pending []byte
	scratch []byte
	closed  bool
}

// NewWriter binds a Writer to sink. The Writer owns the sink until Close.
func NewWriter(sink Sink, opts ...Option) (*Writer, error) {
	if sink == nil {
		return nil, &ConfigError{Option: "sink", Reason: "must not be nil"}
	}
	d, err := NewDialect(opts...)
	if err != nil {
		return nil, err
	}
	return &Writer{sink: sink, d: d, ser: serializer{d: d}}, nil
}

// Dialect returns the writer's immutable dialect.
func (w *Writer) Dialect() *Dialect { return w.d }

// WriteRow renders one record followed by the terminator and buffers the
// bytes. It suspends only when the pending buffer is flushed to the sink.
func (w *Writer) WriteRow(ctx context.Context, rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.render(rec); err != nil {
		return err
	}
	if len(w.pending) >= w.d.chunkSize {
		return w.flushLocked(ctx)
	}
	return nil
}

// WriteRows writes rows in order, batching flushes. It returns the number of
// rows from this call known to be durably flushed to the sink; rows rendered
// but lost to a failed flush are not counted.
func (w *Writer) WriteRows(ctx context.Context, rows []Record) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	flushed := 0
	batched := 0
	for _, rec := range rows {
		if err := w.render(rec); err != nil {
			return flushed, err
		}
		batched++
		if len(w.pending) >= w.d.chunkSize {
			if err := w.flushLocked(ctx); err != nil {
				return flushed, err
			}
			flushed += batched
			batched = 0
		}
	}
	if err := w.flushLocked(ctx); err != nil {
		return flushed, err
	}
	return flushed + batched, nil
}

// Flush drains pending bytes to the sink without closing it.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.flushLocked(ctx)
}

// Close flushes pending bytes and releases the sink. It is idempotent; a
// second call does nothing and never re-flushes already flushed bytes.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	ferr := w.flushLocked(context.Background())
	cerr := w.sink.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// render appends rec to the pending buffer. The record is rendered into a
// scratch buffer first so a mid-record serialization error leaves pending
// untouched.
func (w *Writer) render(rec Record) error {
	out, err := w.ser.appendRecord(w.scratch[:0], rec)
	w.scratch = out[:0]
	if err != nil {
		return err
	}
	w.pending = append(w.pending, out...)
	return nil
}

func (w *Writer) flushLocked(ctx context.Context) error {
	for len(w.pending) > 0 {
		n, err := w.sink.Write(ctx, w.pending)
		if n > 0 {
			// Drop the flushed prefix; a cancelled flush keeps only
			// the unflushed tail for a later retry.
			w.pending = append(w.pending[:0], w.pending[n:]...)
		}
		if err != nil {
			return &IOError{Op: "write", Err: err}
		}
		if n == 0 {
			return &IOError{Op: "write", Err: io.ErrShortWrite}
		}
	}
	return nil
}
