package csvstream

import "fmt"

// QuoteMode selects which fields get quote-wrapped on write.
type QuoteMode int

const (
	// QuoteMinimal quotes a field only when it contains the delimiter, the
	// quote character, or a line terminator byte.
	QuoteMinimal QuoteMode = iota
	// QuoteAll quotes every field.
	QuoteAll
	// QuoteNonNumeric quotes every field that is not a numeric literal.
	QuoteNonNumeric
	// QuoteNone never quotes and relies on the escape character for
	// embedded special bytes.
	QuoteNone
	// QuoteNotNull behaves like QuoteMinimal but additionally quotes every
	// non-empty field, leaving empty (null-like) fields bare.
	QuoteNotNull
	// QuoteStrings quotes every field that is neither empty nor a numeric
	// literal.
	QuoteStrings
)

func (m QuoteMode) valid() bool {
	return m >= QuoteMinimal && m <= QuoteStrings
}

func (m QuoteMode) String() string {
	switch m {
	case QuoteMinimal:
		return "minimal"
	case QuoteAll:
		return "all"
	case QuoteNonNumeric:
		return "nonnumeric"
	case QuoteNone:
		return "none"
	case QuoteNotNull:
		return "notnull"
	case QuoteStrings:
		return "strings"
	default:
		return fmt.Sprintf("quotemode(%d)", int(m))
	}
}

const (
	defaultChunkSize  = 4096
	defaultFieldLimit = 128 << 10
)

// Dialect bundles the options controlling delimiter, quoting, escaping and
// line termination. It is immutable once built by NewDialect.
type Dialect struct {
	delimiter        byte
	quote            byte
	escape           byte // 0 means no escape character
	quoting          QuoteMode
	terminator       string
	skipInitialSpace bool
	strict           bool
	doubleQuote      bool
	fieldLimit       int
	chunkSize        int
}

// Option configures a Dialect under construction.
type Option func(*Dialect) error

// WithDelimiter sets the field delimiter. Default is ','.
func WithDelimiter(c byte) Option {
	return func(d *Dialect) error {
		d.delimiter = c
		return nil
	}
}

// WithQuote sets the quote character. Default is '"'.
func WithQuote(c byte) Option {
	return func(d *Dialect) error {
		d.quote = c
		return nil
	}
}

// WithEscape sets the escape character. There is no escape character by
// default.
func WithEscape(c byte) Option {
	return func(d *Dialect) error {
		d.escape = c
		return nil
	}
}

// WithQuoting sets the quoting mode. Default is QuoteMinimal.
func WithQuoting(m QuoteMode) Option {
	return func(d *Dialect) error {
		d.quoting = m
		return nil
	}
}

// WithTerminator sets the line terminator used on write. Must be "\n", "\r"
// or "\r\n". Default is "\r\n". The read side accepts all three regardless.
func WithTerminator(t string) Option {
	return func(d *Dialect) error {
		d.terminator = t
		return nil
	}
}

// WithSkipInitialSpace discards space bytes immediately following a
// delimiter outside of quotes.
func WithSkipInitialSpace(on bool) Option {
	return func(d *Dialect) error {
		d.skipInitialSpace = on
		return nil
	}
}

// WithStrict makes malformed quoting a parse error instead of being
// tolerated.
func WithStrict(on bool) Option {
	return func(d *Dialect) error {
		d.strict = on
		return nil
	}
}

// WithDoubleQuote controls whether an embedded quote is represented by two
// consecutive quote characters. Default is true.
func WithDoubleQuote(on bool) Option {
	return func(d *Dialect) error {
		d.doubleQuote = on
		return nil
	}
}

// WithFieldLimit caps the size of a single field in bytes.
func WithFieldLimit(n int) Option {
	return func(d *Dialect) error {
		d.fieldLimit = n
		return nil
	}
}

// WithChunkSize sets the size of chunks requested from the source and the
// flush threshold of the writer.
func WithChunkSize(n int) Option {
	return func(d *Dialect) error {
		d.chunkSize = n
		return nil
	}
}

// WithDialect replaces the entire dialect under construction. Useful for
// presets loaded from YAML.
func WithDialect(src *Dialect) Option {
	return func(d *Dialect) error {
		if src == nil {
			return &ConfigError{Option: "dialect", Reason: "nil dialect"}
		}
		*d = *src
		return nil
	}
}

// NewDialect builds and validates a Dialect. Any violation is reported here,
// never during first use.
func NewDialect(opts ...Option) (*Dialect, error) {
	d := &Dialect{
		delimiter:   ',',
		quote:       '"',
		quoting:     QuoteMinimal,
		terminator:  "\r\n",
		doubleQuote: true,
		fieldLimit:  defaultFieldLimit,
		chunkSize:   defaultChunkSize,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dialect) validate() error {
	if d.delimiter == 0 {
		return &ConfigError{Option: "delimiter", Reason: "must be a single non-zero byte"}
	}
	if d.quote == 0 {
		return &ConfigError{Option: "quote", Reason: "must be a single non-zero byte"}
	}
	if d.delimiter == d.quote {
		return &ConfigError{Option: "delimiter", Reason: "delimiter and quote must differ"}
	}
	if d.escape != 0 && (d.escape == d.delimiter || d.escape == d.quote) {
		return &ConfigError{Option: "escape", Reason: "escape must differ from delimiter and quote"}
	}
	if isLineBreak(d.delimiter) || isLineBreak(d.quote) || isLineBreak(d.escape) {
		return &ConfigError{Option: "dialect", Reason: "delimiter, quote and escape must not be line break bytes"}
	}
	if !d.quoting.valid() {
		return &ConfigError{Option: "quoting", Reason: "unknown quoting mode"}
	}
	switch d.terminator {
	case "\n", "\r", "\r\n":
	default:
		return &ConfigError{Option: "terminator", Reason: `must be "\n", "\r" or "\r\n"`}
	}
	if d.fieldLimit <= 0 {
		return &ConfigError{Option: "field limit", Reason: "must be positive"}
	}
	if d.chunkSize <= 0 {
		return &ConfigError{Option: "chunk size", Reason: "must be positive"}
	}
	return nil
}

func isLineBreak(c byte) bool {
	return c == '\n' || c == '\r'
}

// Delimiter returns the field delimiter byte.
func (d *Dialect) Delimiter() byte { return d.delimiter }

// Quote returns the quote character byte.
func (d *Dialect) Quote() byte { return d.quote }

// Escape returns the escape character, or 0 when none is configured.
func (d *Dialect) Escape() byte { return d.escape }

// Quoting returns the configured quoting mode.
func (d *Dialect) Quoting() QuoteMode { return d.quoting }

// Terminator returns the line terminator written after each record.
func (d *Dialect) Terminator() string { return d.terminator }

// Strict reports whether malformed quoting is rejected.
func (d *Dialect) Strict() bool { return d.strict }
