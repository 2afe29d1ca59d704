package proxy

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeMethod(t *testing.T) {
	for _, method := range []string{"get", "Post", "PATCH", "options", "connect", "trace"} {
		got, err := normalizeMethod(method)
		if err != nil {
			t.Fatal(err)
		}
		if got != strings.ToUpper(method) {
			t.Fatal("unexpected method", got)
		}
	}
	for _, method := range []string{"", "FOO", "GET ", "PROPFIND"} {
		if _, err := normalizeMethod(method); !errors.Is(err, errInvalidMethod) {
			t.Fatal("expected errInvalidMethod for", method, "got", err)
		}
	}
}

func TestNewOutgoingRequest(t *testing.T) {
	t.Run("with a simple GET request", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "8080", path: "/a?b=1"}
		headers := map[string]string{
			"X-Test":     "1",
			"Bad Header": "dropped",
			"X-Newline":  "a\r\nInjected: yes",
			"host":       "evil.com",
		}
		out, err := newOutgoingRequest("GET", hs, headers, nil)
		if err != nil {
			t.Fatal(err)
		}
		raw := string(out.raw)
		if !strings.HasPrefix(raw, "GET /a?b=1 HTTP/1.1\r\nHost: example.com:8080\r\n") {
			t.Fatal("unexpected request line or host", raw)
		}
		mustContain := []string{
			"Accept-Encoding: gzip, deflate, br\r\n",
			"X-Test: 1\r\n",
		}
		for _, entry := range mustContain {
			if !strings.Contains(raw, entry) {
				t.Fatal("missing", entry, "in", raw)
			}
		}
		mustNotContain := []string{"User-Agent", "Bad Header", "Injected", "evil.com"}
		for _, entry := range mustNotContain {
			if strings.Contains(raw, entry) {
				t.Fatal("unexpected", entry, "in", raw)
			}
		}
		if !strings.HasSuffix(raw, "\r\n\r\n") {
			t.Fatal("expected the end of headers", raw)
		}
	})

	t.Run("with caller provided Accept-Encoding and User-Agent", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "443", path: "/", secure: true}
		headers := map[string]string{
			"accept-encoding": "identity",
			"User-Agent":      "wirescope/1.0",
		}
		out, err := newOutgoingRequest("GET", hs, headers, nil)
		if err != nil {
			t.Fatal(err)
		}
		raw := string(out.raw)
		if !strings.Contains(raw, "Host: example.com\r\n") {
			t.Fatal("expected the default port to be omitted", raw)
		}
		if !strings.Contains(raw, "Accept-Encoding: identity\r\n") {
			t.Fatal("expected the caller Accept-Encoding", raw)
		}
		if strings.Contains(raw, "gzip") {
			t.Fatal("did not expect the default Accept-Encoding", raw)
		}
		if !strings.Contains(raw, "User-Agent: wirescope/1.0\r\n") {
			t.Fatal("expected the caller User-Agent", raw)
		}
	})

	t.Run("with a body", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "80", path: "/submit"}
		body := `{"hello":"world"}`
		out, err := newOutgoingRequest("POST", hs, nil, &body)
		if err != nil {
			t.Fatal(err)
		}
		raw := string(out.raw)
		if !strings.HasPrefix(raw, "POST /submit HTTP/1.1\r\n") {
			t.Fatal("unexpected request line", raw)
		}
		if !strings.Contains(raw, "Content-Length: 17\r\n") {
			t.Fatal("expected Content-Length", raw)
		}
		if !strings.HasSuffix(raw, "\r\n\r\n"+body) {
			t.Fatal("expected the body at the end", raw)
		}
		if out.req.Method != "POST" {
			t.Fatal("unexpected method", out.req.Method)
		}
	})

	t.Run("with an invalid header name", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "80", path: "/"}
		headers := map[string]string{"Bad Name": "x", "X-Good": "y"}
		out, err := newOutgoingRequest("GET", hs, headers, nil)
		if err != nil {
			t.Fatal(err)
		}
		raw := string(out.raw)
		if strings.Contains(raw, "Bad Name") {
			t.Fatal("expected the header to be dropped", raw)
		}
		if !strings.Contains(raw, "X-Good: y\r\n") {
			t.Fatal("expected the valid header", raw)
		}
	})

	t.Run("with an invalid header value", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "80", path: "/"}
		headers := map[string]string{"X-Bad": "a\r\nInjected: 1"}
		out, err := newOutgoingRequest("GET", hs, headers, nil)
		if !errors.Is(err, errInvalidHeaderValue) {
			t.Fatal("unexpected error", err)
		}
		if out != nil {
			t.Fatal("expected nil request")
		}
	})

	t.Run("with names differing only in case", func(t *testing.T) {
		hs := &hopState{host: "example.com", port: "80", path: "/"}
		headers := map[string]string{"accept": "text/plain", "Accept": "application/json"}
		for i := 0; i < 16; i++ {
			out, err := newOutgoingRequest("GET", hs, headers, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := out.req.Header.Values("Accept"); len(got) != 1 || got[0] != "text/plain" {
				t.Fatal("unexpected Accept", got)
			}
		}
	})

	t.Run("with a host that is not a valid Host header", func(t *testing.T) {
		hs := &hopState{host: "exa mple.com", port: "80", path: "/"}
		if _, err := newOutgoingRequest("GET", hs, nil, nil); err == nil {
			t.Fatal("expected an error")
		}
	})
}
