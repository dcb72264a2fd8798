// Package tail provides a follow-mode file source. Instead of reporting end
// of stream at the end of the file, it waits for the file to grow and serves
// appended bytes as they arrive, so a reader can consume records from a file
// that is still being written.
package tail

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/rowio/csvstream"
)

// Source follows a growing file. Read returns io.EOF only after Close; until
// then, hitting the current end of file suspends on filesystem notifications
// for the next append.
type Source struct {
	f       *os.File
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

var _ csvstream.Source = (*Source)(nil)

// Follow opens path and starts watching it for appended data.
func Follow(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		f.Close()
		return nil, err
	}
	return &Source{f: f, watcher: watcher, done: make(chan struct{})}, nil
}

func (s *Source) Read(ctx context.Context, p []byte) (int, error) {
	for {
		select {
		case <-s.done:
			return 0, io.EOF
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		n, err := s.f.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		// At the current end of file: wait for the next append.
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return 0, io.EOF
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return 0, io.EOF
			}
		case werr, ok := <-s.watcher.Errors:
			if !ok {
				return 0, io.EOF
			}
			return 0, werr
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.done:
			return 0, io.EOF
		}
	}
}

// Close stops following and releases the watcher and file. A blocked Read
// observes end of stream.
func (s *Source) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.watcher.Close()
		err = s.f.Close()
	})
	return err
}
