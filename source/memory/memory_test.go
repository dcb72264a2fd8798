package memory_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowio/csvstream"
	"github.com/rowio/csvstream/source/memory"
)

func TestSourceServesDataThenEOF(t *testing.T) {
	t.Parallel()

	src := memory.NewSource([]byte("hello"))
	ctx := context.Background()
	buf := make([]byte, 16)

	n, err := src.Read(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	_, err = src.Read(ctx, buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSourceMaxChunk(t *testing.T) {
	t.Parallel()

	src := memory.NewSource([]byte("abcdef"), memory.WithMaxChunk(2))
	ctx := context.Background()
	buf := make([]byte, 16)

	n, err := src.Read(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSourceClosed(t *testing.T) {
	t.Parallel()

	src := memory.NewSource([]byte("x"))
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	_, err := src.Read(context.Background(), make([]byte, 1))
	assert.ErrorIs(t, err, csvstream.ErrClosed)
}

func TestSinkAccumulates(t *testing.T) {
	t.Parallel()

	sink := memory.NewSink()
	ctx := context.Background()

	n, err := sink.Write(ctx, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = sink.Write(ctx, []byte("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", sink.String())

	require.NoError(t, sink.Close())
	_, err = sink.Write(ctx, []byte("x"))
	assert.ErrorIs(t, err, csvstream.ErrClosed)
}
