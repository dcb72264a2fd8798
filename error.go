package csvstream

import "fmt"

var (
	// ErrClosed indicates an operation on a closed reader or writer.
	ErrClosed = &Error{"use of closed reader or writer"}
	// ErrBareQuote is returned when a quote appears inside an unquoted field in strict mode.
	ErrBareQuote = &Error{"bare quote in unquoted field"}
	// ErrStrayQuote is returned when a quoted field continues after its closing quote in strict mode.
	ErrStrayQuote = &Error{"unexpected byte after closing quote"}
	// ErrUnterminatedQuote is returned when a quoted field is still open at end of stream in strict mode.
	ErrUnterminatedQuote = &Error{"unterminated quoted field"}
	// ErrQuoteRequired is returned when QuoteNone encounters a special byte and no escape character is configured.
	ErrQuoteRequired = &Error{"field requires escaping but no escape character is set"}
	// ErrFieldLimit is returned when a single field exceeds the configured size limit.
	ErrFieldLimit = &Error{"field exceeds size limit"}
)

// Error represents a plain error condition in the csvstream package.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "csvstream: " + e.Message
}

// ConfigError reports an invalid dialect or construction parameter. It is
// always returned synchronously from the constructor, never during use.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("csvstream: invalid %s: %s", e.Option, e.Reason)
}

// IOError wraps a failure reported by the underlying byte source or sink.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("csvstream: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed input. Line is the physical line the record
// started on and Offset the byte position at which parsing failed.
type ParseError struct {
	Line   int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csvstream: parse error on line %d (byte %d): %v", e.Line, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldCountError reports a record whose width does not match the expected
// fieldnames in dict mode.
type FieldCountError struct {
	Expected int
	Got      int
	Line     int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("csvstream: record on line %d has %d fields, expected %d", e.Line, e.Got, e.Expected)
}
