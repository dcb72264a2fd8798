package csvstream_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowio/csvstream"
	"github.com/rowio/csvstream/source/memory"
)

func newDictReader(t *testing.T, input string, opts ...csvstream.DictReaderOption) *csvstream.DictReader {
	t.Helper()
	r, err := csvstream.NewReader(memory.NewSource([]byte(input)))
	require.NoError(t, err)
	return csvstream.NewDictReader(r, opts...)
}

func TestDictReaderHeaderFromStream(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "a,b\n1,2\n3,4\n")
	ctx := context.Background()

	names, err := d.Fieldnames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	row, err := d.ReadRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, row)
}

func TestDictReaderSuppliedFieldnames(t *testing.T) {
	t.Parallel()

	// With fieldnames supplied up front, the first record is data.
	d := newDictReader(t, "1,2\n", csvstream.WithFieldnames("a", "b"))
	row, err := d.ReadRow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, row)
}

func TestDictReaderRestKey(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "1,2,3\n",
		csvstream.WithFieldnames("a", "b"),
		csvstream.WithRestKey("extra"),
	)
	row, err := d.ReadRow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "2", "extra": []string{"3"}}, row)
}

func TestDictReaderFieldCountError(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "1,2,3\n", csvstream.WithFieldnames("a", "b"))
	_, err := d.ReadRow(context.Background())
	require.Error(t, err)
	var fce *csvstream.FieldCountError
	require.ErrorAs(t, err, &fce)
	assert.Equal(t, 2, fce.Expected)
	assert.Equal(t, 3, fce.Got)
}

func TestDictReaderRestVal(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "1\n",
		csvstream.WithFieldnames("a", "b"),
		csvstream.WithRestVal("n/a"),
	)
	row, err := d.ReadRow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "n/a"}, row)
}

func TestDictReaderSkipsBlankLines(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "a,b\n\n1,2\n\n")
	ctx := context.Background()

	row, err := d.ReadRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, row)

	_, err = d.ReadRow(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDictReaderRows(t *testing.T) {
	t.Parallel()

	d := newDictReader(t, "k\nx\ny\n")
	var got []map[string]any
	for row, err := range d.Rows(context.Background()) {
		require.NoError(t, err)
		got = append(got, row)
	}
	assert.Equal(t, []map[string]any{{"k": "x"}, {"k": "y"}}, got)
}

func TestDictWriter(t *testing.T) {
	t.Parallel()

	sink := memory.NewSink()
	w, err := csvstream.NewWriter(sink, csvstream.WithTerminator("\n"))
	require.NoError(t, err)
	d, err := csvstream.NewDictWriter(w, []string{"a", "b"},
		csvstream.WithWriterRestVal("-"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.WriteHeader(ctx))
	require.NoError(t, d.WriteRow(ctx, map[string]any{"a": "1", "b": "2"}))
	require.NoError(t, d.WriteRow(ctx, map[string]any{"a": "3"}))
	require.NoError(t, d.Close())

	assert.Equal(t, "a,b\n1,2\n3,-\n", sink.String())
}

func TestDictWriterExtrasAction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("raise", func(t *testing.T) {
		t.Parallel()
		w, err := csvstream.NewWriter(memory.NewSink())
		require.NoError(t, err)
		d, err := csvstream.NewDictWriter(w, []string{"a"})
		require.NoError(t, err)
		err = d.WriteRow(ctx, map[string]any{"a": "1", "rogue": "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rogue")
	})

	t.Run("ignore", func(t *testing.T) {
		t.Parallel()
		sink := memory.NewSink()
		w, err := csvstream.NewWriter(sink, csvstream.WithTerminator("\n"))
		require.NoError(t, err)
		d, err := csvstream.NewDictWriter(w, []string{"a"},
			csvstream.WithExtrasAction(csvstream.ExtrasIgnore),
		)
		require.NoError(t, err)
		require.NoError(t, d.WriteRow(ctx, map[string]any{"a": "1", "rogue": "x"}))
		require.NoError(t, d.Close())
		assert.Equal(t, "1\n", sink.String())
	})
}

func TestDictWriterRequiresFieldnames(t *testing.T) {
	t.Parallel()

	w, err := csvstream.NewWriter(memory.NewSink())
	require.NoError(t, err)
	_, err = csvstream.NewDictWriter(w, nil)
	var cfg *csvstream.ConfigError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfg))
}
