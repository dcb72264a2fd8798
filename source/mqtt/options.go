package mqtt

import "crypto/tls"

// Options hold broker connection settings.
type Options struct {
	// QoS for published and subscribed chunks. Default 2, the only level
	// that preserves exactly-once chunk order end to end.
	QoS byte

	// ChunkBacklog is the number of received chunks buffered ahead of the
	// reader.
	ChunkBacklog int

	// TLS configuration for secure broker connections.
	TlsConfig *tls.Config
}

// Option configures Options.
type Option func(*Options) error

func defaultOptions() *Options {
	return &Options{QoS: 2, ChunkBacklog: 16}
}

// WithQoS overrides the MQTT quality of service level.
func WithQoS(qos byte) Option {
	return func(o *Options) error {
		o.QoS = qos
		return nil
	}
}

// WithChunkBacklog sets how many received chunks may queue ahead of the
// reader.
func WithChunkBacklog(n int) Option {
	return func(o *Options) error {
		o.ChunkBacklog = n
		return nil
	}
}

// WithTLSConfig enables TLS towards the broker.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *Options) error {
		o.TlsConfig = cfg
		return nil
	}
}
