package proxy

//
// Connecting to the server
//

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// resolve resolves host with the given per-operation timeout.
func (e *Executor) resolve(ctx context.Context, timeout time.Duration, host string) (*DNSResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Resolve(ctx, e.resolver(), host)
}

// dial establishes a TCP connection with the given IP address and
// the port of the hop, honoring the per-operation timeout.
func (e *Executor) dial(ctx context.Context, timeout time.Duration, hs *hopState, ip string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := e.dialer().DialContext(ctx, "tcp", hs.endpoint(ip))
	if err != nil {
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ConnectOperation, err)
	}
	return conn, nil
}

// handshake performs the TLS handshake for the hop. This function
// does not take ownership of conn.
func (e *Executor) handshake(ctx context.Context, timeout time.Duration,
	conn net.Conn, hs *hopState) (model.TLSConn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tlsConn, err := e.tlsHandshaker().Handshake(ctx, conn, e.newTLSConfig(hs.host))
	if err != nil {
		return nil, netxlite.NewErrWrapper(
			netxlite.ClassifyTLSHandshakeError, netxlite.TLSHandshakeOperation, err)
	}
	return tlsConn, nil
}

// newTLSConfig returns the TLS config for connecting to host. We only
// speak HTTP/1.1, so that is the only protocol we advertise.
func (e *Executor) newTLSConfig(host string) *tls.Config {
	config := &tls.Config{MinVersion: tls.VersionTLS12}
	if e.TLSConfig != nil {
		config = e.TLSConfig.Clone()
	}
	config.ServerName = host
	config.NextProtos = []string{"http/1.1"}
	return config
}
