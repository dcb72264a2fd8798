package csvstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

// ExtrasAction decides what a DictWriter does with map keys that are not in
// its fieldnames.
type ExtrasAction int

const (
	// ExtrasRaise rejects unknown keys with an error.
	ExtrasRaise ExtrasAction = iota
	// ExtrasIgnore silently drops unknown keys.
	ExtrasIgnore
)

// DictReader projects ordered records onto key-value mappings. It is a
// stateless wrapper: all tokenizing stays in the wrapped Reader. Values are
// field strings; when a record is wider than the fieldnames and a rest key
// is configured, the overflow appears under that key as a []string.
type DictReader struct {
	r          *Reader
	fieldnames []string
	restKey    string
	restVal    string
}

// DictReaderOption configures a DictReader.
type DictReaderOption func(*DictReader)

// WithFieldnames supplies the column names up front. Without it the first
// record of the stream is consumed as the header.
func WithFieldnames(names ...string) DictReaderOption {
	return func(d *DictReader) {
		d.fieldnames = names
	}
}

// WithRestKey sets the key that collects overflow fields of a wide record.
func WithRestKey(key string) DictReaderOption {
	return func(d *DictReader) {
		d.restKey = key
	}
}

// WithRestVal sets the value filled in for missing fields of a short record.
func WithRestVal(val string) DictReaderOption {
	return func(d *DictReader) {
		d.restVal = val
	}
}

// NewDictReader wraps r. The DictReader takes over the reader's lifecycle;
// closing one closes the other.
func NewDictReader(r *Reader, opts ...DictReaderOption) *DictReader {
	d := &DictReader{r: r}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fieldnames returns the column names, consuming the header record on first
// call when none were supplied at construction. The result is cached.
func (d *DictReader) Fieldnames(ctx context.Context) ([]string, error) {
	if d.fieldnames != nil {
		return d.fieldnames, nil
	}
	for {
		rec, err := d.r.ReadRow(ctx)
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue // blank line before the header
		}
		d.fieldnames = rec
		return d.fieldnames, nil
	}
}

// ReadRow returns the next record as a mapping. Blank lines are skipped.
// A record wider than the fieldnames needs a rest key, otherwise a
// FieldCountError is returned; missing fields are filled with the rest
// value.
func (d *DictReader) ReadRow(ctx context.Context) (map[string]any, error) {
	names, err := d.Fieldnames(ctx)
	if err != nil {
		return nil, err
	}
	var rec Record
	for {
		rec, err = d.r.ReadRow(ctx)
		if err != nil {
			return nil, err
		}
		if len(rec) > 0 {
			break
		}
	}
	row := make(map[string]any, len(names)+1)
	for i, name := range names {
		if i < len(rec) {
			row[name] = rec[i]
		} else {
			row[name] = d.restVal
		}
	}
	if len(rec) > len(names) {
		if d.restKey == "" {
			return nil, &FieldCountError{Expected: len(names), Got: len(rec), Line: d.r.LineNum()}
		}
		extras := make([]string, len(rec)-len(names))
		copy(extras, rec[len(names):])
		row[d.restKey] = extras
	}
	return row, nil
}

// Rows returns a lazy iterator over the remaining mappings, terminating at
// end of stream.
func (d *DictReader) Rows(ctx context.Context) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		for {
			row, err := d.ReadRow(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// LineNum reports the wrapped reader's line counter.
func (d *DictReader) LineNum() int { return d.r.LineNum() }

// Close closes the wrapped reader.
func (d *DictReader) Close() error { return d.r.Close() }

// DictWriter renders key-value mappings as ordered records using a fixed
// fieldname order. Serialization stays in the wrapped Writer.
type DictWriter struct {
	w          *Writer
	fieldnames []string
	restVal    string
	extras     ExtrasAction
}

// DictWriterOption configures a DictWriter.
type DictWriterOption func(*DictWriter)

// WithWriterRestVal sets the value written for fieldnames missing from a row.
func WithWriterRestVal(val string) DictWriterOption {
	return func(d *DictWriter) {
		d.restVal = val
	}
}

// WithExtrasAction decides how unknown row keys are handled. Default is
// ExtrasRaise.
func WithExtrasAction(a ExtrasAction) DictWriterOption {
	return func(d *DictWriter) {
		d.extras = a
	}
}

// NewDictWriter wraps w. Fieldnames are mandatory for a dict writer.
func NewDictWriter(w *Writer, fieldnames []string, opts ...DictWriterOption) (*DictWriter, error) {
	if len(fieldnames) == 0 {
		return nil, &ConfigError{Option: "fieldnames", Reason: "must not be empty"}
	}
	d := &DictWriter{w: w, fieldnames: fieldnames}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// WriteHeader writes the fieldnames as the first record.
func (d *DictWriter) WriteHeader(ctx context.Context) error {
	return d.w.WriteRow(ctx, Record(d.fieldnames))
}

// WriteRow renders one mapping in fieldname order.
func (d *DictWriter) WriteRow(ctx context.Context, row map[string]any) error {
	rec, err := d.record(row)
	if err != nil {
		return err
	}
	return d.w.WriteRow(ctx, rec)
}

// WriteRows writes a sequence of mappings, batching flushes. The returned
// count follows Writer.WriteRows semantics.
func (d *DictWriter) WriteRows(ctx context.Context, rows []map[string]any) (int, error) {
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := d.record(row)
		if err != nil {
			return 0, err
		}
		recs = append(recs, rec)
	}
	return d.w.WriteRows(ctx, recs)
}

// Flush drains the wrapped writer.
func (d *DictWriter) Flush(ctx context.Context) error { return d.w.Flush(ctx) }

// Close closes the wrapped writer.
func (d *DictWriter) Close() error { return d.w.Close() }

func (d *DictWriter) record(row map[string]any) (Record, error) {
	if d.extras == ExtrasRaise {
		for k := range row {
			if !slices.Contains(d.fieldnames, k) {
				return nil, &Error{Message: fmt.Sprintf("dict contains key %q not in fieldnames", k)}
			}
		}
	}
	rec := make(Record, len(d.fieldnames))
	for i, name := range d.fieldnames {
		v, ok := row[name]
		if !ok {
			rec[i] = d.restVal
			continue
		}
		rec[i] = stringify(v)
	}
	return rec, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
