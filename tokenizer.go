package csvstream

import (
	"context"
	"io"
)

type tokState int

const (
	stateFieldStart tokState = iota
	stateInField
	stateInQuoted
	stateQuoteInQuoted
	stateEscaped
	stateEscapedInQuoted
)

// tokenizer is the byte-level state machine of the read path. All of its
// state, including the partially accumulated field, survives buffer refills;
// a byte that has been consumed is never reparsed.
type tokenizer struct {
	d      *Dialect
	state  tokState
	field  []byte
	fields []string

	line   int   // physical newlines consumed so far
	offset int64 // bytes consumed so far
	skipLF bool  // previous byte was a terminating CR; swallow one LF
}

func newTokenizer(d *Dialect) tokenizer {
	return tokenizer{d: d}
}

// readRecord drives the state machine until one full record is assembled or
// the source is exhausted. End of stream is reported as io.EOF via finish.
func (t *tokenizer) readRecord(ctx context.Context, buf *buffer, src Source) (Record, error) {
	for {
		c, ok := buf.next()
		if !ok {
			if err := buf.ensure(ctx, src, 1); err != nil {
				return nil, err
			}
			c, ok = buf.next()
			if !ok {
				return t.finish()
			}
		}
		t.offset++
		if t.skipLF {
			t.skipLF = false
			if c == '\n' {
				continue
			}
		}
		done, err := t.step(c)
		if err != nil {
			t.reset()
			return nil, err
		}
		if done {
			rec := Record(t.fields)
			t.fields = nil
			return rec, nil
		}
	}
}

func (t *tokenizer) step(c byte) (bool, error) {
	d := t.d
	switch t.state {
	case stateFieldStart:
		switch {
		case c == d.quote:
			t.state = stateInQuoted
		case c == d.delimiter:
			t.endField()
		case c == '\n' || c == '\r':
			t.consumeTerminator(c)
			if len(t.fields) == 0 {
				// Blank line: a record with zero fields.
				return true, nil
			}
			t.endField()
			return true, nil
		case d.escape != 0 && c == d.escape:
			t.state = stateEscaped
		case d.skipInitialSpace && c == ' ':
			// Discarded; still at field start.
		default:
			if err := t.appendByte(c); err != nil {
				return false, err
			}
			t.state = stateInField
		}

	case stateInField:
		switch {
		case c == d.delimiter:
			t.endField()
			t.state = stateFieldStart
		case c == '\n' || c == '\r':
			t.consumeTerminator(c)
			t.endField()
			t.state = stateFieldStart
			return true, nil
		case d.escape != 0 && c == d.escape:
			t.state = stateEscaped
		case c == d.quote:
			if d.strict {
				return false, t.parseErr(ErrBareQuote)
			}
			if err := t.appendByte(c); err != nil {
				return false, err
			}
		default:
			if err := t.appendByte(c); err != nil {
				return false, err
			}
		}

	case stateInQuoted:
		switch {
		case c == d.quote:
			t.state = stateQuoteInQuoted
		case d.escape != 0 && c == d.escape:
			t.state = stateEscapedInQuoted
		default:
			if c == '\n' {
				t.line++
			}
			if err := t.appendByte(c); err != nil {
				return false, err
			}
		}

	case stateQuoteInQuoted:
		switch {
		case d.doubleQuote && c == d.quote:
			// Doubled quote: one literal quote character.
			if err := t.appendByte(c); err != nil {
				return false, err
			}
			t.state = stateInQuoted
		case c == d.delimiter:
			t.endField()
			t.state = stateFieldStart
		case c == '\n' || c == '\r':
			t.consumeTerminator(c)
			t.endField()
			t.state = stateFieldStart
			return true, nil
		default:
			if d.strict {
				return false, t.parseErr(ErrStrayQuote)
			}
			// Lenient rule: the stray byte joins the field and the
			// quoted section continues.
			if c == '\n' {
				t.line++
			}
			if err := t.appendByte(c); err != nil {
				return false, err
			}
			t.state = stateInQuoted
		}

	case stateEscaped:
		if c == '\n' {
			t.line++
		}
		if err := t.appendByte(c); err != nil {
			return false, err
		}
		t.state = stateInField

	case stateEscapedInQuoted:
		if c == '\n' {
			t.line++
		}
		if err := t.appendByte(c); err != nil {
			return false, err
		}
		t.state = stateInQuoted
	}
	return false, nil
}

// finish resolves the machine when the source is exhausted mid-record.
func (t *tokenizer) finish() (Record, error) {
	switch t.state {
	case stateInQuoted, stateEscapedInQuoted:
		if t.d.strict {
			t.reset()
			return nil, t.parseErr(ErrUnterminatedQuote)
		}
		t.endField()
	case stateFieldStart:
		if len(t.fields) == 0 && len(t.field) == 0 {
			return nil, io.EOF
		}
		t.endField()
	default:
		t.endField()
	}
	t.state = stateFieldStart
	rec := Record(t.fields)
	t.fields = nil
	return rec, nil
}

func (t *tokenizer) consumeTerminator(c byte) {
	t.line++
	if c == '\r' {
		t.skipLF = true
	}
}

func (t *tokenizer) endField() {
	t.fields = append(t.fields, string(t.field))
	t.field = t.field[:0]
}

func (t *tokenizer) appendByte(c byte) error {
	if len(t.field) >= t.d.fieldLimit {
		return t.parseErr(ErrFieldLimit)
	}
	t.field = append(t.field, c)
	return nil
}

func (t *tokenizer) reset() {
	t.state = stateFieldStart
	t.field = t.field[:0]
	t.fields = nil
}

func (t *tokenizer) parseErr(err error) error {
	return &ParseError{Line: t.line + 1, Offset: t.offset, Err: err}
}
