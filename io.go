package csvstream

import "context"

// Source is an asynchronous chunked byte source. Read blocks only on ctx or
// on the underlying device and returns io.EOF once the stream is exhausted.
//
// A Source is exclusively owned by the Reader it is handed to; calls on one
// Source are linearized by that Reader.
type Source interface {
	// Read fills p with up to len(p) bytes and returns the number read.
	Read(ctx context.Context, p []byte) (int, error)

	// Close releases the source. Implementations must be idempotent.
	Close() error
}

// Sink is an asynchronous chunked byte sink.
type Sink interface {
	// Write writes p and returns the number of bytes accepted.
	Write(ctx context.Context, p []byte) (int, error)

	// Close releases the sink. Implementations must be idempotent.
	Close() error
}
