package tcp

import (
	"context"
	"time"

	"github.com/hashicorp/yamux"

	"github.com/rowio/csvstream"
)

// stream adapts a yamux stream to the Source/Sink contracts. Context
// cancellation is mapped onto stream deadlines, so a cancelled call unblocks
// without tearing the stream down.
type stream struct {
	s *yamux.Stream
}

var (
	_ csvstream.Source = (*stream)(nil)
	_ csvstream.Sink   = (*stream)(nil)
)

func (st *stream) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, func() {
		st.s.SetReadDeadline(time.Unix(1, 0))
	})
	n, err := st.s.Read(p)
	if !stop() {
		st.s.SetReadDeadline(time.Time{})
		if cerr := ctx.Err(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

func (st *stream) Write(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, func() {
		st.s.SetWriteDeadline(time.Unix(1, 0))
	})
	n, err := st.s.Write(p)
	if !stop() {
		st.s.SetWriteDeadline(time.Time{})
		if cerr := ctx.Err(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

func (st *stream) Close() error {
	return st.s.Close()
}
