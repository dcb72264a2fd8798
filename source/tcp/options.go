package tcp

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// Options hold dial and listen settings.
type Options struct {
	// Timeout for the dial operation.
	ConnectTimeout time.Duration

	// TLS configuration for secure connections.
	TlsConfig *tls.Config
}

// Option configures Options.
type Option func(*Options) error

func defaultOptions() *Options {
	return &Options{ConnectTimeout: 5 * time.Second}
}

// WithConnectTimeout bounds how long Dial may take.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *Options) error {
		o.ConnectTimeout = d
		return nil
	}
}

// WithTLSConfig enables TLS on the connection or listener.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *Options) error {
		o.TlsConfig = cfg
		return nil
	}
}

// WithCertificateFile loads a certificate and key pair for a TLS listener.
func WithCertificateFile(certFile, keyFile string) Option {
	return func(o *Options) error {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return fmt.Errorf("failed to load certificate: %v", err)
		}
		if o.TlsConfig == nil {
			o.TlsConfig = &tls.Config{}
		}
		o.TlsConfig.Certificates = []tls.Certificate{cert}
		return nil
	}
}

// WithSelfSignedCert generates a throwaway certificate, useful for tests and
// point-to-point transfers where the peers trust the network.
func WithSelfSignedCert() Option {
	return func(o *Options) error {
		cert, err := generateCertificate(30 * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("failed to generate self-signed certificate: %v", err)
		}
		if o.TlsConfig == nil {
			o.TlsConfig = &tls.Config{}
		}
		o.TlsConfig.InsecureSkipVerify = true
		o.TlsConfig.Certificates = []tls.Certificate{cert}
		return nil
	}
}

func (o *Options) dial(addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: o.ConnectTimeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	if o.TlsConfig != nil {
		conn = tls.Client(conn, o.TlsConfig)
	}
	return conn, nil
}

func (o *Options) listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if o.TlsConfig != nil {
		ln = tls.NewListener(ln, o.TlsConfig)
	}
	return ln, nil
}
