package transport

import (
	"crypto/tls"
	"net"
	"os"

	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

type TLS struct {
	cfg *tls.Config
	TCP
}

func NewTLS(cfg *tls.Config) *TLS {
	return &TLS{
		cfg: cfg,
		TCP: newTCP(nil),
	}
}

// NewHTTPS returns a TLS transport serving the passed certificates.
func NewHTTPS(certs ...tls.Certificate) *TLS {
	return NewTLS(&tls.Config{
		Certificates: certs,
	})
}

// NewAutoHTTPS returns a TLS transport obtaining certificates via ACME (Let's Encrypt by
// default.) Only the listed domains are served, unless none are passed. Certificates are
// cached in cacheDir, if it's not empty.
func NewAutoHTTPS(cacheDir string, domains ...string) (*TLS, error) {
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
	}

	if len(domains) > 0 {
		m.HostPolicy = autocert.HostWhitelist(domains...)
	}

	if len(cacheDir) > 0 {
		if err := os.MkdirAll(cacheDir, 0700); err != nil {
			return nil, err
		}

		m.Cache = autocert.DirCache(cacheDir)
	}

	cfg := m.TLSConfig()
	// the manager offers h2 by default, which isn't spoken here
	cfg.NextProtos = []string{"http/1.1", acme.ALPNProto}

	return NewTLS(cfg), nil
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.TCP.l = tlsAdapter{tcp, tls.NewListener(tcp, t.cfg)}

	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}
