// Package convert bridges CSV streams and JSON Lines without materializing
// either side: one CSV record becomes one JSON object per line and back.
package convert

import (
	"bytes"
	"context"
	"errors"
	"io"

	json "github.com/goccy/go-json"

	"github.com/rowio/csvstream"
)

// ToJSONLines drains dr and writes one JSON object per record to sink. It
// returns the number of rows written. The reader and sink stay open; their
// lifecycle remains with the caller.
func ToJSONLines(ctx context.Context, dr *csvstream.DictReader, sink csvstream.Sink) (int, error) {
	count := 0
	for {
		row, err := dr.ReadRow(ctx)
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		data, err := json.Marshal(row)
		if err != nil {
			return count, err
		}
		data = append(data, '\n')
		if err := writeAll(ctx, sink, data); err != nil {
			return count, err
		}
		count++
	}
}

// FromJSONLines reads newline-delimited JSON objects from src and writes
// each through dw, flushing at the end. It returns the number of rows
// written. Blank lines are skipped.
func FromJSONLines(ctx context.Context, src csvstream.Source, dw *csvstream.DictWriter) (int, error) {
	var pending []byte
	chunk := make([]byte, 4096)
	count := 0
	emit := func(line []byte) error {
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(bytes.TrimSpace(line)) == 0 {
			return nil
		}
		var row map[string]any
		if err := json.Unmarshal(line, &row); err != nil {
			return err
		}
		if err := dw.WriteRow(ctx, row); err != nil {
			return err
		}
		count++
		return nil
	}
	for {
		n, err := src.Read(ctx, chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				if err := emit(pending[:i]); err != nil {
					return count, err
				}
				pending = append(pending[:0], pending[i+1:]...)
			}
		}
		if errors.Is(err, io.EOF) {
			if err := emit(pending); err != nil {
				return count, err
			}
			if err := dw.Flush(ctx); err != nil {
				return count, err
			}
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}

func writeAll(ctx context.Context, sink csvstream.Sink, p []byte) error {
	for len(p) > 0 {
		n, err := sink.Write(ctx, p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
