// Package mqtt streams CSV bytes over an MQTT topic. The sending side
// publishes QoS-2 chunks; a zero-length payload marks end of stream. One
// topic carries one CSV stream at a time.
package mqtt

import (
	"context"
	"io"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/rowio/csvstream"
)

const endMarker = 0 // zero-length payload terminates the stream

// Sink publishes written chunks to a topic.
type Sink struct {
	client paho.Client
	topic  string
	qos    byte
	once   sync.Once
	cerr   error
}

var _ csvstream.Sink = (*Sink)(nil)

// NewSink connects to broker and targets topic.
func NewSink(broker, topic string, opts ...Option) (*Sink, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	client, err := connect(broker, "csvstream-pub-"+uuid.NewString(), o)
	if err != nil {
		return nil, err
	}
	return &Sink{client: client, topic: topic, qos: o.QoS}, nil
}

func (s *Sink) Write(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	token := s.client.Publish(s.topic, s.qos, false, buf)
	if err := waitToken(ctx, token); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close publishes the end-of-stream marker and disconnects.
func (s *Sink) Close() error {
	s.once.Do(func() {
		token := s.client.Publish(s.topic, s.qos, false, []byte{})
		token.Wait()
		s.cerr = token.Error()
		s.client.Disconnect(250)
	})
	return s.cerr
}

// Source subscribes to a topic and serves received chunks in publish order.
type Source struct {
	client  paho.Client
	topic   string
	chunks  chan []byte
	current []byte
	eof     bool
	done    chan struct{}
	once    sync.Once
}

var _ csvstream.Source = (*Source)(nil)

// NewSource connects to broker and subscribes to topic.
func NewSource(broker, topic string, opts ...Option) (*Source, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	client, err := connect(broker, "csvstream-sub-"+uuid.NewString(), o)
	if err != nil {
		return nil, err
	}
	s := &Source{
		client: client,
		topic:  topic,
		chunks: make(chan []byte, o.ChunkBacklog),
		done:   make(chan struct{}),
	}
	token := client.Subscribe(topic, o.QoS, func(_ paho.Client, m paho.Message) {
		payload := m.Payload()
		buf := make([]byte, len(payload))
		copy(buf, payload)
		select {
		case s.chunks <- buf:
		case <-s.done:
		}
	})
	if token.Wait(); token.Error() != nil {
		client.Disconnect(250)
		return nil, token.Error()
	}
	return s, nil
}

func (s *Source) Read(ctx context.Context, p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(s.current) == 0 {
		select {
		case chunk := <-s.chunks:
			if len(chunk) == endMarker {
				s.eof = true
				return 0, io.EOF
			}
			s.current = chunk
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.done:
			return 0, csvstream.ErrClosed
		}
	}
	n := copy(p, s.current)
	s.current = s.current[n:]
	return n, nil
}

// Close unsubscribes and disconnects.
func (s *Source) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.client.Unsubscribe(s.topic)
		s.client.Disconnect(250)
	})
	return nil
}

func connect(broker, clientID string, o *Options) (paho.Client, error) {
	co := paho.NewClientOptions()
	co.AddBroker(broker)
	co.SetClientID(clientID)
	if o.TlsConfig != nil {
		co.SetTLSConfig(o.TlsConfig)
	}
	client := paho.NewClient(co)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}

// waitToken waits for a paho token while honoring ctx.
func waitToken(ctx context.Context, token paho.Token) error {
	done := make(chan error, 1)
	go func() {
		token.Wait()
		done <- token.Error()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
