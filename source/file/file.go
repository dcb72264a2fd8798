// Package file provides byte sources and sinks backed by real files. Each
// handle owns a worker goroutine that performs the blocking syscalls, so a
// caller waiting on Read or Write only ever parks on a channel and its
// scheduler never stalls on device latency.
package file

import (
	"context"
	"os"
	"sync"

	"github.com/rowio/csvstream"
)

type readResult struct {
	data []byte
	err  error
}

// Source reads a file through a dedicated worker goroutine. A read completed
// after its caller was cancelled is retained and handed to the next call, so
// cancellation never loses bytes.
type Source struct {
	f        *os.File
	req      chan int
	res      chan readResult
	done     chan struct{}
	once     sync.Once
	inflight bool
	leftover []byte
	pending  error
}

var _ csvstream.Source = (*Source)(nil)

// Open opens path for reading.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := &Source{
		f:    f,
		req:  make(chan int),
		res:  make(chan readResult, 1),
		done: make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *Source) run() {
	for {
		select {
		case <-s.done:
			return
		case size := <-s.req:
			buf := make([]byte, size)
			n, err := s.f.Read(buf)
			s.res <- readResult{data: buf[:n], err: err}
		}
	}
}

func (s *Source) Read(ctx context.Context, p []byte) (int, error) {
	if len(s.leftover) > 0 {
		n := copy(p, s.leftover)
		s.leftover = s.leftover[n:]
		if len(s.leftover) == 0 && s.pending != nil {
			err := s.pending
			s.pending = nil
			return n, err
		}
		return n, nil
	}
	if s.pending != nil {
		err := s.pending
		s.pending = nil
		return 0, err
	}
	if !s.inflight {
		select {
		case s.req <- len(p):
			s.inflight = true
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.done:
			return 0, csvstream.ErrClosed
		}
	}
	select {
	case r := <-s.res:
		s.inflight = false
		n := copy(p, r.data)
		if n < len(r.data) {
			s.leftover = r.data[n:]
			s.pending = r.err
			return n, nil
		}
		return n, r.err
	case <-ctx.Done():
		// The worker will finish the read; its result stays buffered in
		// res and is consumed by the next call.
		return 0, ctx.Err()
	case <-s.done:
		return 0, csvstream.ErrClosed
	}
}

// Close releases the worker and the file. Closing the file also unblocks a
// worker stuck in a syscall.
func (s *Source) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.f.Close()
	})
	return err
}

type writeResult struct {
	n   int
	err error
}

// Sink writes a file through a dedicated worker goroutine. A write that
// completes after its caller was cancelled is accounted to the next call,
// since those bytes did reach the file.
type Sink struct {
	f        *os.File
	req      chan []byte
	res      chan writeResult
	done     chan struct{}
	once     sync.Once
	inflight bool
}

var _ csvstream.Sink = (*Sink)(nil)

// Create truncates or creates path for writing.
func Create(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newSink(f), nil
}

// Append opens path for appending, creating it when missing.
func Append(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return newSink(f), nil
}

func newSink(f *os.File) *Sink {
	s := &Sink{
		f:    f,
		req:  make(chan []byte),
		res:  make(chan writeResult, 1),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sink) run() {
	for {
		select {
		case <-s.done:
			return
		case p := <-s.req:
			n, err := s.f.Write(p)
			s.res <- writeResult{n: n, err: err}
		}
	}
}

func (s *Sink) Write(ctx context.Context, p []byte) (int, error) {
	if s.inflight {
		select {
		case r := <-s.res:
			s.inflight = false
			return r.n, r.err
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.done:
			return 0, csvstream.ErrClosed
		}
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	select {
	case s.req <- buf:
		s.inflight = true
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
		return 0, csvstream.ErrClosed
	}
	select {
	case r := <-s.res:
		s.inflight = false
		return r.n, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
		return 0, csvstream.ErrClosed
	}
}

// Close releases the worker and the file exactly once.
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.f.Close()
	})
	return err
}
