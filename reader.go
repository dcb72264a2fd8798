package csvstream

import (
	"context"
	"errors"
	"io"
	"iter"
)

// Reader streams records out of a Source. It owns the source until Close and
// must not be used from overlapping goroutines; calls are expected to be
// linearized by the caller.
type Reader struct {
	src    Source
	d      *Dialect
	buf    buffer
	tok    tokenizer
	closed bool
}

// NewReader binds a Reader to src with a dialect built from opts.
func NewReader(src Source, opts ...Option) (*Reader, error) {
	if src == nil {
		return nil, &ConfigError{Option: "source", Reason: "must not be nil"}
	}
	d, err := NewDialect(opts...)
	if err != nil {
		return nil, err
	}
	return &Reader{
		src: src,
		d:   d,
		buf: newBuffer(d.chunkSize),
		tok: newTokenizer(d),
	}, nil
}

// Dialect returns the reader's immutable dialect.
func (r *Reader) Dialect() *Dialect { return r.d }

// ReadRow returns the next record. End of stream is reported as io.EOF; a
// blank input line parses to a zero-field record, which is distinct from a
// record holding one empty field.
func (r *Reader) ReadRow(ctx context.Context) (Record, error) {
	if r.closed {
		return nil, ErrClosed
	}
	return r.tok.readRecord(ctx, &r.buf, r.src)
}

// ReadRows returns up to n records, stopping early at end of stream.
func (r *Reader) ReadRows(ctx context.Context, n int) ([]Record, error) {
	rows := make([]Record, 0, n)
	for len(rows) < n {
		rec, err := r.ReadRow(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// SkipRows discards up to n records, advancing the line counter and cursor
// exactly as reading them would. It returns the number skipped.
func (r *Reader) SkipRows(ctx context.Context, n int) (int, error) {
	for i := 0; i < n; i++ {
		_, err := r.ReadRow(ctx)
		if errors.Is(err, io.EOF) {
			return i, nil
		}
		if err != nil {
			return i, err
		}
	}
	return n, nil
}

// Rows returns a lazy iterator over the remaining records. It terminates at
// end of stream and yields any error as the final element. The sequence is
// not restartable once exhausted.
func (r *Reader) Rows(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := r.ReadRow(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// LineNum reports the number of physical lines consumed so far. A record
// with an embedded newline inside a quoted field advances it by more than
// one.
func (r *Reader) LineNum() int {
	return r.tok.line
}

// Close releases the source. It is idempotent; reads after Close fail with
// ErrClosed.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
