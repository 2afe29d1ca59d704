package proxy

//
// Hop state and redirect resolution
//

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	// errNoHost indicates that a URL does not contain a host.
	errNoHost = errors.New("URL has no host")

	// errUnsupportedScheme indicates a scheme other than http and https.
	errUnsupportedScheme = errors.New("unsupported scheme")
)

// hopState describes the next request to send. It is replaced in
// place on every redirect.
type hopState struct {
	// url is the URL of the request.
	url string

	// host is the hostname without brackets.
	host string

	// port is the explicit or default port.
	port string

	// path is the path including the query, if any.
	path string

	// secure indicates whether we need TLS.
	secure bool
}

// newHopState parses the URL of the first hop.
func newHopState(rawURL string) (*hopState, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q", errUnsupportedScheme, parsed.Scheme)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return nil, errNoHost
	}
	hs := &hopState{
		url:    rawURL,
		host:   parsed.Hostname(),
		port:   parsed.Port(),
		path:   requestPath(parsed),
		secure: scheme == "https",
	}
	if hs.port == "" {
		hs.port = hs.defaultPort()
	}
	return hs, nil
}

// requestPath returns the escaped path followed by the query, if any.
func requestPath(parsed *url.URL) string {
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" || parsed.ForceQuery {
		path += "?" + parsed.RawQuery
	}
	return path
}

func (hs *hopState) scheme() string {
	if hs.secure {
		return "https"
	}
	return "http"
}

func (hs *hopState) defaultPort() string {
	if hs.secure {
		return "443"
	}
	return "80"
}

// hostPort returns the host followed by the port unless the port is
// the default one for the scheme. IPv6 hosts are bracketed.
func (hs *hopState) hostPort() string {
	if hs.port == hs.defaultPort() {
		if strings.Contains(hs.host, ":") {
			return "[" + hs.host + "]"
		}
		return hs.host
	}
	return net.JoinHostPort(hs.host, hs.port)
}

// endpoint returns the address to dial for the given IP address.
func (hs *hopState) endpoint(ip string) string {
	return net.JoinHostPort(ip, hs.port)
}

func (hs *hopState) rebuildURL() string {
	return hs.scheme() + "://" + hs.hostPort() + hs.path
}

// isAbsoluteLocation returns whether location starts with an http or https scheme.
func isAbsoluteLocation(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// advance updates the state to follow the given Location and returns
// the URL of the next request.
//
// An absolute location replaces scheme, host, path and query. When the
// location has no explicit port, we keep the current port if the host
// did not change and the current port is not the default port of the
// new scheme. This means that an http to https redirect on the same host
// keeps port 80. An absolute location that does not parse replaces the
// URL and leaves everything else untouched.
//
// A relative location keeps scheme, host and port. It replaces the path
// when it starts with "/" and otherwise is appended to "/" as is.
func (hs *hopState) advance(location string) string {
	if !isAbsoluteLocation(location) {
		if strings.HasPrefix(location, "/") {
			hs.path = location
		} else {
			hs.path = "/" + location
		}
		hs.url = hs.rebuildURL()
		return hs.url
	}
	parsed, err := url.Parse(location)
	if err != nil {
		hs.url = location
		return location
	}
	secure := strings.EqualFold(parsed.Scheme, "https")
	host := parsed.Hostname()
	if host == "" {
		host = hs.host
	}
	next := &hopState{host: host, secure: secure, path: requestPath(parsed)}
	switch {
	case parsed.Port() != "":
		next.port = parsed.Port()
	case host == hs.host && hs.port != next.defaultPort():
		next.port = hs.port
	default:
		next.port = next.defaultPort()
	}
	next.url = next.rebuildURL()
	*hs = *next
	return hs.url
}
