// Package memory provides in-memory byte sources and sinks, mainly for
// tests and for feeding already-buffered data through the streaming engine.
package memory

import (
	"context"
	"io"
	"sync"

	"github.com/rowio/csvstream"
)

// Source serves a fixed byte slice in bounded chunks. MaxChunk caps how many
// bytes a single Read may return, which makes refill-boundary behavior easy
// to exercise.
type Source struct {
	mu     sync.Mutex
	data   []byte
	pos    int
	chunk  int
	closed bool
}

var _ csvstream.Source = (*Source)(nil)

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithMaxChunk caps the bytes returned by one Read call.
func WithMaxChunk(n int) SourceOption {
	return func(s *Source) {
		s.chunk = n
	}
}

// NewSource wraps data. The Source does not copy it; the caller must not
// mutate data afterwards.
func NewSource(data []byte, opts ...SourceOption) *Source {
	s := &Source{data: data}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, csvstream.ErrClosed
	}
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := len(p)
	if s.chunk > 0 && n > s.chunk {
		n = s.chunk
	}
	n = copy(p[:n], s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sink accumulates written bytes in memory.
type Sink struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

var _ csvstream.Sink = (*Sink)(nil)

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Write(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, csvstream.ErrClosed
	}
	s.data = append(s.data, p...)
	return len(p), nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Bytes returns a copy of everything written so far.
func (s *Sink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

// String returns everything written so far as a string.
func (s *Sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data)
}
