package csvstream

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// dialectDoc is the YAML shape of one named dialect preset.
type dialectDoc struct {
	Delimiter        string `yaml:"delimiter"`
	Quote            string `yaml:"quote"`
	Escape           string `yaml:"escape"`
	Quoting          string `yaml:"quoting"`
	Terminator       string `yaml:"terminator"`
	SkipInitialSpace bool   `yaml:"skip_initial_space"`
	Strict           bool   `yaml:"strict"`
	DoubleQuote      *bool  `yaml:"double_quote"`
	FieldLimit       int    `yaml:"field_limit"`
	ChunkSize        int    `yaml:"chunk_size"`
}

// Preset returns one of the built-in dialects: "excel" (the defaults),
// "excel-tab" (tab-delimited) and "unix" (LF terminated, quote everything).
func Preset(name string) (*Dialect, error) {
	switch name {
	case "excel":
		return NewDialect()
	case "excel-tab":
		return NewDialect(WithDelimiter('\t'))
	case "unix":
		return NewDialect(WithTerminator("\n"), WithQuoting(QuoteAll))
	default:
		return nil, &ConfigError{Option: "preset", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
}

// LoadDialects reads a YAML document mapping preset names to dialect
// settings. Every entry is validated eagerly; the first invalid entry fails
// the whole load.
func LoadDialects(r io.Reader) (map[string]*Dialect, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read dialect presets", Err: err}
	}
	var docs map[string]dialectDoc
	if err := yaml.Unmarshal(raw, &docs); err != nil {
		return nil, &ConfigError{Option: "dialect presets", Reason: err.Error()}
	}
	out := make(map[string]*Dialect, len(docs))
	for name, doc := range docs {
		d, err := doc.build()
		if err != nil {
			return nil, &ConfigError{Option: "preset " + name, Reason: err.Error()}
		}
		out[name] = d
	}
	return out, nil
}

func (doc dialectDoc) build() (*Dialect, error) {
	var opts []Option
	if doc.Delimiter != "" {
		c, err := singleByte("delimiter", doc.Delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDelimiter(c))
	}
	if doc.Quote != "" {
		c, err := singleByte("quote", doc.Quote)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithQuote(c))
	}
	if doc.Escape != "" {
		c, err := singleByte("escape", doc.Escape)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithEscape(c))
	}
	if doc.Quoting != "" {
		m, err := quoteModeByName(doc.Quoting)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithQuoting(m))
	}
	if doc.Terminator != "" {
		t, err := terminatorByName(doc.Terminator)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTerminator(t))
	}
	if doc.SkipInitialSpace {
		opts = append(opts, WithSkipInitialSpace(true))
	}
	if doc.Strict {
		opts = append(opts, WithStrict(true))
	}
	if doc.DoubleQuote != nil {
		opts = append(opts, WithDoubleQuote(*doc.DoubleQuote))
	}
	if doc.FieldLimit != 0 {
		opts = append(opts, WithFieldLimit(doc.FieldLimit))
	}
	if doc.ChunkSize != 0 {
		opts = append(opts, WithChunkSize(doc.ChunkSize))
	}
	return NewDialect(opts...)
}

func singleByte(option, s string) (byte, error) {
	if len(s) != 1 {
		return 0, &ConfigError{Option: option, Reason: fmt.Sprintf("%q is not a single byte", s)}
	}
	return s[0], nil
}

func quoteModeByName(s string) (QuoteMode, error) {
	switch s {
	case "minimal":
		return QuoteMinimal, nil
	case "all":
		return QuoteAll, nil
	case "nonnumeric":
		return QuoteNonNumeric, nil
	case "none":
		return QuoteNone, nil
	case "notnull":
		return QuoteNotNull, nil
	case "strings":
		return QuoteStrings, nil
	default:
		return 0, &ConfigError{Option: "quoting", Reason: fmt.Sprintf("unknown quoting mode %q", s)}
	}
}

func terminatorByName(s string) (string, error) {
	switch s {
	case "lf", "\n":
		return "\n", nil
	case "cr", "\r":
		return "\r", nil
	case "crlf", "\r\n":
		return "\r\n", nil
	default:
		return "", &ConfigError{Option: "terminator", Reason: fmt.Sprintf("unknown terminator %q", s)}
	}
}
