package proxy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewHopState(t *testing.T) {
	type testcase struct {
		name    string
		input   string
		want    *hopState
		wantErr error
	}

	cases := []testcase{{
		name:  "with an https URL and no path",
		input: "https://example.com",
		want: &hopState{
			url:    "https://example.com",
			host:   "example.com",
			port:   "443",
			path:   "/",
			secure: true,
		},
	}, {
		name:  "with an http URL with port and query",
		input: "http://example.com:8080/a/b?x=1&y=2",
		want: &hopState{
			url:  "http://example.com:8080/a/b?x=1&y=2",
			host: "example.com",
			port: "8080",
			path: "/a/b?x=1&y=2",
		},
	}, {
		name:  "with an IPv6 host",
		input: "http://[::1]:9000/",
		want: &hopState{
			url:  "http://[::1]:9000/",
			host: "::1",
			port: "9000",
			path: "/",
		},
	}, {
		name:  "with uppercase scheme",
		input: "HTTPS://example.com/x",
		want: &hopState{
			url:    "HTTPS://example.com/x",
			host:   "example.com",
			port:   "443",
			path:   "/x",
			secure: true,
		},
	}, {
		name:    "with an unsupported scheme",
		input:   "ftp://example.com/",
		wantErr: errUnsupportedScheme,
	}, {
		name:    "without host",
		input:   "http:///path",
		wantErr: errNoHost,
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hs, err := newHopState(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatal("expected", tc.wantErr, "got", err)
			}
			if diff := cmp.Diff(tc.want, hs, cmp.AllowUnexported(hopState{})); diff != "" {
				t.Fatal(diff)
			}
		})
	}

	t.Run("with a URL that does not parse", func(t *testing.T) {
		hs, err := newHopState("http://[::1")
		if err == nil {
			t.Fatal("expected an error")
		}
		if hs != nil {
			t.Fatal("expected nil state")
		}
	})
}

func TestHopStateAdvance(t *testing.T) {
	type testcase struct {
		name     string
		state    hopState
		location string
		wantURL  string
		want     hopState
	}

	cases := []testcase{{
		name:     "absolute location to the same host keeps a non-default port",
		state:    hopState{url: "http://a.com:9000/x", host: "a.com", port: "9000", path: "/x"},
		location: "http://a.com/y",
		wantURL:  "http://a.com:9000/y",
		want:     hopState{url: "http://a.com:9000/y", host: "a.com", port: "9000", path: "/y"},
	}, {
		name:     "absolute location to another host uses the default port",
		state:    hopState{url: "http://a.com:9000/x", host: "a.com", port: "9000", path: "/x"},
		location: "http://b.com/y",
		wantURL:  "http://b.com/y",
		want:     hopState{url: "http://b.com/y", host: "b.com", port: "80", path: "/y"},
	}, {
		name:     "absolute location with explicit port",
		state:    hopState{url: "http://a.com/", host: "a.com", port: "80", path: "/"},
		location: "https://a.com:8443/z?q=1",
		wantURL:  "https://a.com:8443/z?q=1",
		want: hopState{
			url: "https://a.com:8443/z?q=1", host: "a.com", port: "8443", path: "/z?q=1", secure: true},
	}, {
		name:     "upgrade to https on the same host keeps the plain port",
		state:    hopState{url: "http://a.com/", host: "a.com", port: "80", path: "/"},
		location: "https://a.com/",
		wantURL:  "https://a.com:80/",
		want:     hopState{url: "https://a.com:80/", host: "a.com", port: "80", path: "/", secure: true},
	}, {
		name:     "downgrade to http on the same host keeps the secure port",
		state:    hopState{url: "https://a.com/", host: "a.com", port: "443", path: "/", secure: true},
		location: "http://a.com/x",
		wantURL:  "http://a.com:443/x",
		want:     hopState{url: "http://a.com:443/x", host: "a.com", port: "443", path: "/x"},
	}, {
		name:     "upgrade to https on another host uses the default port",
		state:    hopState{url: "http://a.com/", host: "a.com", port: "80", path: "/"},
		location: "https://b.com/",
		wantURL:  "https://b.com/",
		want:     hopState{url: "https://b.com/", host: "b.com", port: "443", path: "/", secure: true},
	}, {
		name:     "same scheme and host with the default port",
		state:    hopState{url: "https://a.com/", host: "a.com", port: "443", path: "/", secure: true},
		location: "https://a.com/next",
		wantURL:  "https://a.com/next",
		want:     hopState{url: "https://a.com/next", host: "a.com", port: "443", path: "/next", secure: true},
	}, {
		name:     "absolute location with mixed case scheme",
		state:    hopState{url: "http://a.com/", host: "a.com", port: "80", path: "/"},
		location: "HTTPS://b.com",
		wantURL:  "https://b.com/",
		want:     hopState{url: "https://b.com/", host: "b.com", port: "443", path: "/", secure: true},
	}, {
		name:     "relative location with leading slash replaces path and query",
		state:    hopState{url: "https://a.com:8443/x?old=1", host: "a.com", port: "8443", path: "/x?old=1", secure: true},
		location: "/foo?x=1",
		wantURL:  "https://a.com:8443/foo?x=1",
		want: hopState{
			url: "https://a.com:8443/foo?x=1", host: "a.com", port: "8443", path: "/foo?x=1", secure: true},
	}, {
		name:     "relative location without leading slash",
		state:    hopState{url: "http://a.com/dir/page", host: "a.com", port: "80", path: "/dir/page"},
		location: "other",
		wantURL:  "http://a.com/other",
		want:     hopState{url: "http://a.com/other", host: "a.com", port: "80", path: "/other"},
	}, {
		name:     "relative location with dot segments is not resolved",
		state:    hopState{url: "http://a.com/dir/page", host: "a.com", port: "80", path: "/dir/page"},
		location: "../up",
		wantURL:  "http://a.com/../up",
		want:     hopState{url: "http://a.com/../up", host: "a.com", port: "80", path: "/../up"},
	}, {
		name:     "relative location with IPv6 host",
		state:    hopState{url: "http://[::1]/", host: "::1", port: "80", path: "/"},
		location: "/v6",
		wantURL:  "http://[::1]/v6",
		want:     hopState{url: "http://[::1]/v6", host: "::1", port: "80", path: "/v6"},
	}, {
		name:     "absolute location that does not parse only replaces the URL",
		state:    hopState{url: "http://a.com/", host: "a.com", port: "80", path: "/"},
		location: "http://[::1",
		wantURL:  "http://[::1",
		want:     hopState{url: "http://[::1", host: "a.com", port: "80", path: "/"},
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hs := tc.state
			got := hs.advance(tc.location)
			if got != tc.wantURL {
				t.Fatal("expected", tc.wantURL, "got", got)
			}
			if diff := cmp.Diff(tc.want, hs, cmp.AllowUnexported(hopState{})); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestHopStateHostPort(t *testing.T) {
	cases := []struct {
		state hopState
		want  string
	}{
		{hopState{host: "a.com", port: "80"}, "a.com"},
		{hopState{host: "a.com", port: "443"}, "a.com:443"},
		{hopState{host: "a.com", port: "443", secure: true}, "a.com"},
		{hopState{host: "::1", port: "80"}, "[::1]"},
		{hopState{host: "::1", port: "8080"}, "[::1]:8080"},
	}
	for _, tc := range cases {
		if got := tc.state.hostPort(); got != tc.want {
			t.Fatal("expected", tc.want, "got", got)
		}
	}
}
