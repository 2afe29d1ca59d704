package proxy

//
// Building the outgoing request
//

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	oohttp "github.com/ooni/oohttp"
	"golang.org/x/net/http/httpguts"
)

// errInvalidMethod indicates a method outside of the standard set.
var errInvalidMethod = errors.New("invalid method")

// errInvalidHeaderValue indicates a header value we cannot put on the wire.
var errInvalidHeaderValue = errors.New("invalid header value")

// allowedMethods contains the methods we're willing to send.
var allowedMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"CONNECT": true,
	"OPTIONS": true,
	"TRACE":   true,
	"PATCH":   true,
}

// defaultAcceptEncoding is the Accept-Encoding we add when the
// caller did not specify one.
const defaultAcceptEncoding = "gzip, deflate, br"

// normalizeMethod upper-cases the method and checks it against the
// standard method set.
func normalizeMethod(method string) (string, error) {
	upper := strings.ToUpper(method)
	if !allowedMethods[upper] {
		return "", fmt.Errorf("%w: %s", errInvalidMethod, method)
	}
	return upper, nil
}

// outgoingRequest is a request ready to be sent.
type outgoingRequest struct {
	// req is the request we send, also used to parse the response.
	req *oohttp.Request

	// raw is the request serialized as HTTP/1.1.
	raw []byte
}

// newOutgoingRequest builds and serializes the request for the given hop.
//
// Headers with an invalid name are dropped, while an invalid value is an
// error. Names are processed in sorted order, so when two names differ
// only in case the one sorting last wins. We add the Accept-Encoding
// header if missing and we never send Go's default User-Agent header.
func newOutgoingRequest(method string, hs *hopState, headers map[string]string, body *string) (*outgoingRequest, error) {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	header := oohttp.Header{}
	for _, key := range keys {
		if !httpguts.ValidHeaderFieldName(key) {
			continue
		}
		value := headers[key]
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("%w for %s", errInvalidHeaderValue, key)
		}
		header.Set(key, value)
	}
	if header.Get("Accept-Encoding") == "" {
		header.Set("Accept-Encoding", defaultAcceptEncoding)
	}
	if _, found := header["User-Agent"]; !found {
		header["User-Agent"] = []string{""}
	}
	// The Host header comes from the hop and the caller cannot override it.
	header.Del("Host")
	path, query, _ := strings.Cut(hs.path, "?")
	req := &oohttp.Request{
		Method: method,
		URL: &url.URL{
			Scheme:     hs.scheme(),
			Host:       hs.hostPort(),
			Opaque:     path,
			RawQuery:   query,
			ForceQuery: strings.HasSuffix(hs.path, "?"),
		},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Host:       hs.hostPort(),
	}
	if body != nil {
		req.Body = io.NopCloser(strings.NewReader(*body))
		req.ContentLength = int64(len(*body))
		if len(*body) == 0 {
			req.Body = oohttp.NoBody
		}
	}
	var buffer bytes.Buffer
	if err := req.Write(&buffer); err != nil {
		return nil, err
	}
	return &outgoingRequest{req: req, raw: buffer.Bytes()}, nil
}
