package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when a PEM bundle holds no certificates.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool is a set of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool returns a pool seeded with the system roots. Systems without a
// readable system pool get an empty one.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool returns a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds every certificate in the PEM file at path.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("tlsroots: %s: %w", path, err)
	}
	return nil
}

// AddCertPEM adds every CERTIFICATE block in pemData. Other block types
// are skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// TLSConfig returns a client config trusting this pool.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}

// ClientConfig returns a client TLS config trusting the system roots and,
// when caFile is set, the certificates it contains. It returns nil, nil when
// caFile is empty so callers keep the transport defaults.
func ClientConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}

	p := NewPool()
	if err := p.AddCertFile(caFile); err != nil {
		return nil, err
	}
	return p.TLSConfig(), nil
}

// ServerConfig loads a certificate/key pair for a listening server.
func ServerConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
