package csvstream_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowio/csvstream"
)

func TestNewDialectDefaults(t *testing.T) {
	t.Parallel()

	d, err := csvstream.NewDialect()
	require.NoError(t, err)
	assert.Equal(t, byte(','), d.Delimiter())
	assert.Equal(t, byte('"'), d.Quote())
	assert.Equal(t, byte(0), d.Escape())
	assert.Equal(t, csvstream.QuoteMinimal, d.Quoting())
	assert.Equal(t, "\r\n", d.Terminator())
	assert.False(t, d.Strict())
}

func TestNewDialectValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []csvstream.Option
	}{
		{name: "zeroDelimiter", opts: []csvstream.Option{csvstream.WithDelimiter(0)}},
		{name: "delimiterEqualsQuote", opts: []csvstream.Option{csvstream.WithDelimiter('"')}},
		{name: "escapeEqualsDelimiter", opts: []csvstream.Option{csvstream.WithEscape(',')}},
		{name: "newlineDelimiter", opts: []csvstream.Option{csvstream.WithDelimiter('\n')}},
		{name: "badTerminator", opts: []csvstream.Option{csvstream.WithTerminator("\n\n")}},
		{name: "badQuoting", opts: []csvstream.Option{csvstream.WithQuoting(csvstream.QuoteMode(99))}},
		{name: "zeroFieldLimit", opts: []csvstream.Option{csvstream.WithFieldLimit(0)}},
		{name: "negativeChunkSize", opts: []csvstream.Option{csvstream.WithChunkSize(-1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := csvstream.NewDialect(tc.opts...)
			require.Error(t, err)
			var cfg *csvstream.ConfigError
			assert.ErrorAs(t, err, &cfg)
		})
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()

	excel, err := csvstream.Preset("excel")
	require.NoError(t, err)
	assert.Equal(t, byte(','), excel.Delimiter())
	assert.Equal(t, "\r\n", excel.Terminator())

	tab, err := csvstream.Preset("excel-tab")
	require.NoError(t, err)
	assert.Equal(t, byte('\t'), tab.Delimiter())

	unix, err := csvstream.Preset("unix")
	require.NoError(t, err)
	assert.Equal(t, "\n", unix.Terminator())
	assert.Equal(t, csvstream.QuoteAll, unix.Quoting())

	_, err = csvstream.Preset("nope")
	assert.Error(t, err)
}

func TestLoadDialects(t *testing.T) {
	t.Parallel()

	doc := `
pipes:
  delimiter: "|"
  quoting: all
  terminator: lf
tabs:
  delimiter: "\t"
  skip_initial_space: true
  strict: true
`
	dialects, err := csvstream.LoadDialects(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, dialects, 2)

	assert.Equal(t, byte('|'), dialects["pipes"].Delimiter())
	assert.Equal(t, csvstream.QuoteAll, dialects["pipes"].Quoting())
	assert.Equal(t, "\n", dialects["pipes"].Terminator())
	assert.True(t, dialects["tabs"].Strict())
}

func TestLoadDialectsRejectsBadEntries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "multiByteDelimiter", doc: "bad:\n  delimiter: \"||\"\n"},
		{name: "unknownQuoting", doc: "bad:\n  quoting: sometimes\n"},
		{name: "unknownTerminator", doc: "bad:\n  terminator: vertical-tab\n"},
		{name: "notYAML", doc: "{{{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := csvstream.LoadDialects(strings.NewReader(tc.doc))
			require.Error(t, err)
			var cfg *csvstream.ConfigError
			assert.ErrorAs(t, err, &cfg)
		})
	}
}
