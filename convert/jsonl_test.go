package convert_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowio/csvstream"
	"github.com/rowio/csvstream/convert"
	"github.com/rowio/csvstream/source/memory"
)

func TestToJSONLines(t *testing.T) {
	t.Parallel()

	r, err := csvstream.NewReader(memory.NewSource([]byte("name,age\nAlice,30\nBob,25\n")))
	require.NoError(t, err)
	dr := csvstream.NewDictReader(r)
	defer dr.Close()

	sink := memory.NewSink()
	n, err := convert.ToJSONLines(context.Background(), dr, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"name":"Alice","age":"30"}`, lines[0])
	assert.JSONEq(t, `{"name":"Bob","age":"25"}`, lines[1])
}

func TestFromJSONLines(t *testing.T) {
	t.Parallel()

	input := `{"name":"Alice","age":"30"}
{"name":"Bob","age":"25"}
`
	sink := memory.NewSink()
	w, err := csvstream.NewWriter(sink, csvstream.WithTerminator("\n"))
	require.NoError(t, err)
	dw, err := csvstream.NewDictWriter(w, []string{"name", "age"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, dw.WriteHeader(ctx))
	n, err := convert.FromJSONLines(ctx, memory.NewSource([]byte(input)), dw)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, dw.Close())

	assert.Equal(t, "name,age\nAlice,30\nBob,25\n", sink.String())
}

func TestFromJSONLinesSkipsBlankAndHandlesNoTrailingNewline(t *testing.T) {
	t.Parallel()

	input := "{\"k\":\"1\"}\r\n\r\n{\"k\":\"2\"}"
	sink := memory.NewSink()
	w, err := csvstream.NewWriter(sink, csvstream.WithTerminator("\n"))
	require.NoError(t, err)
	dw, err := csvstream.NewDictWriter(w, []string{"k"})
	require.NoError(t, err)

	n, err := convert.FromJSONLines(context.Background(), memory.NewSource([]byte(input)), dw)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, dw.Close())
	assert.Equal(t, "1\n2\n", sink.String())
}

func TestFromJSONLinesBadJSON(t *testing.T) {
	t.Parallel()

	w, err := csvstream.NewWriter(memory.NewSink())
	require.NoError(t, err)
	dw, err := csvstream.NewDictWriter(w, []string{"k"})
	require.NoError(t, err)

	_, err = convert.FromJSONLines(context.Background(), memory.NewSource([]byte("not json\n")), dw)
	assert.Error(t, err)
}

func TestRoundTripThroughJSONLines(t *testing.T) {
	t.Parallel()

	const csvIn = "a,b\n1,2\n3,4\n"
	ctx := context.Background()

	r, err := csvstream.NewReader(memory.NewSource([]byte(csvIn)))
	require.NoError(t, err)
	dr := csvstream.NewDictReader(r)
	jsonSink := memory.NewSink()
	_, err = convert.ToJSONLines(ctx, dr, jsonSink)
	require.NoError(t, err)

	csvSink := memory.NewSink()
	w, err := csvstream.NewWriter(csvSink, csvstream.WithTerminator("\n"))
	require.NoError(t, err)
	dw, err := csvstream.NewDictWriter(w, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, dw.WriteHeader(ctx))
	_, err = convert.FromJSONLines(ctx, memory.NewSource(jsonSink.Bytes()), dw)
	require.NoError(t, err)
	require.NoError(t, dw.Close())

	assert.Equal(t, csvIn, csvSink.String())
}
