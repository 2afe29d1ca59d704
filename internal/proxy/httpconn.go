package proxy

//
// HTTP/1.1 exchange over an established connection
//

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	oohttp "github.com/ooni/oohttp"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// httpConn binds a buffered HTTP/1.1 codec to a connection. It does
// not own the connection: the caller closes it when the hop is over,
// which also reclaims the request driver goroutine.
type httpConn struct {
	conn   net.Conn
	logger model.Logger
	reader *bufio.Reader
}

// newHTTPConn creates a new httpConn.
func newHTTPConn(conn net.Conn, logger model.Logger) (*httpConn, error) {
	if conn == nil {
		return nil, netxlite.NewErrWrapper(classifyHTTPError, netxlite.HTTPHandshakeOperation, net.ErrClosed)
	}
	return &httpConn{
		conn:   conn,
		logger: logger,
		reader: bufio.NewReader(conn),
	}, nil
}

// send starts the background driver writing the serialized request. A
// write failure is logged and otherwise ignored: the caller notices
// the failure when reading the response.
func (hc *httpConn) send(raw []byte, deadline time.Time) {
	hc.conn.SetWriteDeadline(deadline)
	go func() {
		if _, err := hc.conn.Write(raw); err != nil {
			hc.logger.Warnf("proxy: connection error: %s", err.Error())
		}
	}()
}

// readResponse reads the response headers. Informational responses
// other than 101 are skipped.
func (hc *httpConn) readResponse(ctx context.Context, req *oohttp.Request) (*oohttp.Response, error) {
	stop := hc.watch(ctx)
	defer stop()
	for {
		resp, err := oohttp.ReadResponse(hc.reader, req)
		if err != nil {
			return nil, hc.wrapReadResponseError(ctx, err)
		}
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != 101 {
			continue
		}
		return resp, nil
	}
}

// wrapReadResponseError distinguishes between I/O errors and peers that
// did not speak HTTP/1.x.
func (hc *httpConn) wrapReadResponseError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	if isIOError(err) {
		return netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.HTTPRoundTripOperation, err)
	}
	return netxlite.NewErrWrapper(classifyHTTPError, netxlite.HTTPHandshakeOperation, err)
}

// readBody reads the whole response body. On failure we do not close
// the body because closing drains it: closing the conn is enough.
func (hc *httpConn) readBody(ctx context.Context, resp *oohttp.Response) ([]byte, error) {
	stop := hc.watch(ctx)
	defer stop()
	data, err := netxlite.ReadAllContext(ctx, resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyGenericError, netxlite.ReadBodyOperation, err)
	}
	resp.Body.Close()
	return data, nil
}

// watch applies the context deadline to the conn and interrupts pending
// reads when the context is done. Call the returned func when done.
func (hc *httpConn) watch(ctx context.Context) func() {
	if deadline, ok := ctx.Deadline(); ok {
		hc.conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		hc.conn.SetReadDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		hc.conn.SetReadDeadline(time.Time{})
	}
}

// isIOError returns whether err comes from the network rather than
// from parsing the response.
func isIOError(err error) bool {
	var (
		ew     *netxlite.ErrWrapper
		netErr net.Error
	)
	switch {
	case errors.As(err, &ew), errors.As(err, &netErr):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, net.ErrClosed):
		return true
	default:
		return false
	}
}

// classifyHTTPError classifies errors caused by invalid HTTP responses.
func classifyHTTPError(err error) string {
	if isIOError(err) {
		return netxlite.ClassifyGenericError(err)
	}
	return netxlite.FailureHTTPInvalidResponse
}
