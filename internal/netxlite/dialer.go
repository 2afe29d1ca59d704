package netxlite

//
// Dialer implementation
//

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/wirescope/wirescope/internal/model"
)

// ErrNoResolver is the type of error returned by the dialer
// when passed a domain name instead of an IP address endpoint.
var ErrNoResolver = errors.New("no configured resolver")

// NewDialerWithoutResolver creates a dialer that connects to IP address
// endpoints, logs, and wraps errors. It fails with ErrNoResolver
// when it is passed an endpoint containing a domain name.
func NewDialerWithoutResolver(logger model.DebugLogger) model.Dialer {
	return WrapDialer(logger, &dialerSystem{})
}

// WrapDialer wraps an existing Dialer to add logging, error wrapping,
// and the refusal to dial domain names.
func WrapDialer(logger model.DebugLogger, dialer model.Dialer) model.Dialer {
	return &dialerLogger{
		Dialer: &dialerIPOnly{
			Dialer: &dialerErrWrapper{
				Dialer: dialer,
			},
		},
		DebugLogger: logger,
	}
}

// dialerSystem uses system facilities to perform domain name
// resolution and guarantees we have a dialer timeout.
type dialerSystem struct {
	// timeout is the OPTIONAL timeout used for testing.
	timeout time.Duration
}

var _ model.Dialer = &dialerSystem{}

const dialerDefaultTimeout = 15 * time.Second

func (d *dialerSystem) newUnderlyingDialer() *net.Dialer {
	t := d.timeout
	if t <= 0 {
		t = dialerDefaultTimeout
	}
	return &net.Dialer{
		Timeout:   t,
		KeepAlive: -1, // one request per connection
	}
}

// DialContext implements model.Dialer.DialContext.
func (d *dialerSystem) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.newUnderlyingDialer().DialContext(ctx, network, address)
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerSystem) CloseIdleConnections() {
	// nothing to do here
}

// dialerIPOnly refuses to dial endpoints whose host is not an IP address.
type dialerIPOnly struct {
	model.Dialer
}

// DialContext implements model.Dialer.DialContext.
func (d *dialerIPOnly) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
	}
	if net.ParseIP(host) == nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, ErrNoResolver)
	}
	return d.Dialer.DialContext(ctx, network, address)
}

// dialerLogger is a Dialer with logging.
type dialerLogger struct {
	// Dialer is the underlying dialer.
	Dialer model.Dialer

	// DebugLogger is the underlying logger.
	DebugLogger model.DebugLogger
}

var _ model.Dialer = &dialerLogger{}

// DialContext implements model.Dialer.DialContext
func (d *dialerLogger) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.DebugLogger.Debugf("dial %s/%s...", address, network)
	start := time.Now()
	conn, err := d.Dialer.DialContext(ctx, network, address)
	elapsed := time.Since(start)
	if err != nil {
		d.DebugLogger.Debugf("dial %s/%s... %s in %s", address, network, err, elapsed)
		return nil, err
	}
	d.DebugLogger.Debugf("dial %s/%s... ok in %s", address, network, elapsed)
	return conn, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerLogger) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}

// dialerErrWrapper is a dialer that performs error wrapping. The connection
// returned by the DialContext function will also perform error wrapping.
type dialerErrWrapper struct {
	Dialer model.Dialer
}

var _ model.Dialer = &dialerErrWrapper{}

// DialContext implements model.Dialer.DialContext.
func (d *dialerErrWrapper) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, NewErrWrapper(ClassifyGenericError, ConnectOperation, err)
	}
	return &dialerErrWrapperConn{Conn: conn}, nil
}

// CloseIdleConnections implements model.Dialer.CloseIdleConnections.
func (d *dialerErrWrapper) CloseIdleConnections() {
	d.Dialer.CloseIdleConnections()
}

// dialerErrWrapperConn is a net.Conn that performs error wrapping.
type dialerErrWrapperConn struct {
	net.Conn
}

var _ net.Conn = &dialerErrWrapperConn{}

// Read implements net.Conn.Read. The io.EOF error is returned as-is
// because readers above us compare against it by identity.
func (c *dialerErrWrapperConn) Read(b []byte) (int, error) {
	count, err := c.Conn.Read(b)
	if err != nil && err != io.EOF {
		return count, NewErrWrapper(ClassifyGenericError, ReadOperation, err)
	}
	return count, err
}

// Write implements net.Conn.Write.
func (c *dialerErrWrapperConn) Write(b []byte) (int, error) {
	count, err := c.Conn.Write(b)
	if err != nil {
		return 0, NewErrWrapper(ClassifyGenericError, WriteOperation, err)
	}
	return count, nil
}

// Close implements net.Conn.Close.
func (c *dialerErrWrapperConn) Close() error {
	err := c.Conn.Close()
	if err != nil {
		return NewErrWrapper(ClassifyGenericError, CloseOperation, err)
	}
	return nil
}
