package proxy

//
// Executing a request and following redirects
//

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	oohttp "github.com/ooni/oohttp"
	"github.com/wirescope/wirescope/internal/certinfo"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
	"github.com/wirescope/wirescope/internal/timing"
)

const (
	// MaxRedirects is the maximum length of the redirect chain.
	MaxRedirects = 20

	// DefaultTimeout is the per-operation timeout we use when the
	// request does not specify one.
	DefaultTimeout = 30 * time.Second
)

// Executor executes a model.ProxyRequest and annotates the result with
// timing, TLS and size information. The zero value is invalid; please,
// use NewExecutor or fill the MANDATORY fields.
//
// An Executor is safe for concurrent use: every call to Execute owns
// its connections and its timing tracker.
type Executor struct {
	// Dialer is the OPTIONAL dialer. If nil, we use a dialer that
	// logs, wraps errors and only accepts IP endpoints.
	Dialer model.Dialer

	// Logger is the MANDATORY logger.
	Logger model.Logger

	// Resolver is the OPTIONAL resolver. If nil, we use SharedResolver.
	Resolver model.Resolver

	// TimeNow is the OPTIONAL function returning the current time.
	TimeNow func() time.Time

	// TLSConfig is the OPTIONAL base TLS config. We clone it for every
	// handshake and override ServerName and NextProtos.
	TLSConfig *tls.Config

	// TLSHandshaker is the OPTIONAL TLS handshaker. If nil, we use
	// the standard library handshaker with the bundled CA pool.
	TLSHandshaker model.TLSHandshaker
}

// NewExecutor creates a new Executor using the given logger and
// the default network stack.
func NewExecutor(logger model.Logger) *Executor {
	return &Executor{
		Dialer:        netxlite.NewDialerWithoutResolver(logger),
		Logger:        logger,
		Resolver:      SharedResolver(),
		TLSHandshaker: netxlite.NewTLSHandshakerStdlib(logger),
	}
}

func (e *Executor) dialer() model.Dialer {
	if e.Dialer != nil {
		return e.Dialer
	}
	return netxlite.NewDialerWithoutResolver(e.Logger)
}

func (e *Executor) resolver() model.Resolver {
	if e.Resolver != nil {
		return e.Resolver
	}
	return SharedResolver()
}

func (e *Executor) tlsHandshaker() model.TLSHandshaker {
	if e.TLSHandshaker != nil {
		return e.TLSHandshaker
	}
	return netxlite.NewTLSHandshakerStdlib(e.Logger)
}

func (e *Executor) timeNow() time.Time {
	if e.TimeNow != nil {
		return e.TimeNow()
	}
	return time.Now()
}

// Execute executes the request, follows redirects and returns the
// annotated result. This function never returns nil: failures are
// reported using model.NewErrorResponse.
func (e *Executor) Execute(ctx context.Context, req *model.ProxyRequest) *model.ProxyResponse {
	hop, err := newHopState(req.URL)
	if err != nil {
		return model.NewErrorResponse(model.ErrCodeInvalidURL, fmt.Sprintf("Invalid URL: %s", err.Error()))
	}
	method, err := normalizeMethod(req.Method)
	if err != nil {
		return model.NewErrorResponse(model.ErrCodeInvalidMethod, fmt.Sprintf("Invalid method: %s", req.Method))
	}
	ex := &execution{
		e:       e,
		hop:     hop,
		method:  method,
		req:     req,
		timeout: requestTimeout(req),
		tracker: timing.NewTracker(e.TimeNow),
	}
	return ex.run(ctx)
}

// requestTimeout returns the per-operation timeout of the request. A
// missing or zero timeout means DefaultTimeout.
func requestTimeout(req *model.ProxyRequest) time.Duration {
	if req.Timeout == nil || *req.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(*req.Timeout) * time.Millisecond
}

// execution is the state of a single Execute call.
type execution struct {
	chain       []model.RedirectHop
	e           *Executor
	hop         *hopState
	hopStart    time.Time
	method      string
	req         *model.ProxyRequest
	resolvedIPs []string
	serverIP    string
	timeout     time.Duration
	tlsInfo     *certinfo.Captured
	tracker     *timing.Tracker
}

// hopOutcome tells the redirect loop what to do after a hop.
type hopOutcome int

const (
	// hopRedirect means we need to follow a redirect.
	hopRedirect = hopOutcome(iota)

	// hopDone means we have assembled the final response.
	hopDone

	// hopFailed means the execution failed.
	hopFailed
)

// hopResult is the tagged result of a hop.
type hopResult struct {
	outcome  hopOutcome
	response *model.ProxyResponse
}

func (ex *execution) fail(response *model.ProxyResponse) hopResult {
	return hopResult{outcome: hopFailed, response: response}
}

// run performs the connection setup of the first hop and then loops
// until we have a final response or we fail.
func (ex *execution) run(ctx context.Context) *model.ProxyResponse {
	ex.hopStart = ex.e.timeNow()
	ex.tracker.StartDNS()
	addrs, err := ex.e.resolve(ctx, ex.timeout, ex.hop.host)
	if err != nil {
		return classify(err)
	}
	ex.tracker.EndDNS()
	ex.serverIP = addrs.IPs[0]
	ex.resolvedIPs = addrs.IPs
	ex.tracker.StartTCP()
	conn, err := ex.e.dial(ctx, ex.timeout, ex.hop, ex.serverIP)
	if err != nil {
		return classify(err)
	}
	ex.tracker.EndTCP()
	for first := true; ; first = false {
		result := ex.doHop(ctx, conn, first)
		if result.outcome != hopRedirect {
			return result.response
		}
		ex.hopStart = ex.e.timeNow()
		if conn, err = ex.connect(ctx); err != nil {
			return classify(err)
		}
	}
}

// connect resolves and dials the current hop after a redirect.
func (ex *execution) connect(ctx context.Context) (net.Conn, error) {
	addrs, err := ex.e.resolve(ctx, ex.timeout, ex.hop.host)
	if err != nil {
		return nil, err
	}
	return ex.e.dial(ctx, ex.timeout, ex.hop, addrs.IPs[0])
}

// doHop performs a single request over conn and takes ownership of conn.
func (ex *execution) doHop(ctx context.Context, conn net.Conn, first bool) hopResult {
	defer conn.Close()

	stream := conn
	if ex.hop.secure {
		if first {
			ex.tracker.StartTLS()
		}
		tlsConn, err := ex.e.handshake(ctx, ex.timeout, conn, ex.hop)
		if err != nil {
			return ex.fail(classify(err))
		}
		defer tlsConn.Close()
		if first {
			ex.tracker.EndTLS()
			ex.tlsInfo = certinfo.FromConnectionState(tlsConn.ConnectionState())
		}
		stream = tlsConn
	}

	hc, err := newHTTPConn(stream, ex.e.Logger)
	if err != nil {
		return ex.fail(classify(err))
	}
	out, err := newOutgoingRequest(ex.method, ex.hop, ex.req.Headers, ex.req.Body)
	if err != nil {
		return ex.fail(model.NewErrorResponse(
			model.ErrCodeRequestBuild, fmt.Sprintf("Failed to build request: %s", err.Error())))
	}

	if first {
		ex.tracker.StartRequest()
	}
	roundTripCtx, cancelRoundTrip := context.WithTimeout(ctx, ex.timeout)
	defer cancelRoundTrip()
	deadline, _ := roundTripCtx.Deadline()
	hc.send(out.raw, deadline)
	resp, err := hc.readResponse(roundTripCtx, out.req)
	if err != nil {
		return ex.fail(classify(err))
	}
	if first {
		ex.tracker.MarkTTFB()
	}

	ex.tracker.StartDownload()
	bodyCtx, cancelBody := context.WithTimeout(ctx, ex.timeout)
	defer cancelBody()
	body, err := hc.readBody(bodyCtx, resp)
	if err != nil {
		return ex.fail(classify(err))
	}
	ex.tracker.EndDownload()

	if location := resp.Header.Get("Location"); isRedirect(resp.StatusCode) && location != "" {
		return ex.redirect(resp, location)
	}
	return hopResult{outcome: hopDone, response: assemble(resp, body, ex.summary())}
}

// redirect records the current hop and moves to the next one.
func (ex *execution) redirect(resp *oohttp.Response, location string) hopResult {
	current := ex.hop.url
	next := ex.hop.advance(location)
	message := fmt.Sprintf("Redirect to: %s", next)
	ex.chain = append(ex.chain, model.RedirectHop{
		URL:      current,
		Status:   uint16(resp.StatusCode),
		Duration: uint64(ex.e.timeNow().Sub(ex.hopStart).Milliseconds()),
		Headers:  flattenHeaders(resp.Header),
		Message:  &message,
	})
	ex.e.Logger.Debugf("proxy: %d %s => %s", resp.StatusCode, current, next)
	if len(ex.chain) >= MaxRedirects {
		return ex.fail(model.NewErrorResponse(model.ErrCodeTooManyRedirects, "Too many redirects"))
	}
	return hopResult{outcome: hopRedirect}
}

// summary collects what the assembler needs to know about the execution.
func (ex *execution) summary() *executionSummary {
	requestHeaders := ex.req.Headers
	if requestHeaders == nil {
		requestHeaders = map[string]string{}
	}
	var requestBodySize *int
	if ex.req.Body != nil {
		size := len(*ex.req.Body)
		requestBodySize = &size
	}
	return &executionSummary{
		Chain:           ex.chain,
		Hostname:        ex.hop.host,
		Now:             ex.e.timeNow(),
		Port:            ex.hop.port,
		RequestBodySize: requestBodySize,
		RequestHeaders:  requestHeaders,
		ResolvedIPs:     ex.resolvedIPs,
		ServerIP:        ex.serverIP,
		Timing:          ex.tracker.Info(),
		TLS:             ex.tlsInfo,
		URL:             ex.hop.url,
	}
}

// isRedirect returns whether the status code is a 3xx status code.
func isRedirect(code int) bool {
	return code >= 300 && code < 400
}

// flattenHeaders lowercases header names and keeps the first value.
func flattenHeaders(header oohttp.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		name := strings.ToLower(key)
		if _, found := out[name]; found || len(values) <= 0 {
			continue
		}
		out[name] = values[0]
	}
	return out
}
