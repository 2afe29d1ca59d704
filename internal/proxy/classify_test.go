package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

func TestClassify(t *testing.T) {
	type testcase struct {
		name string
		err  error
		want *model.ErrorData
	}

	mocked := errors.New("mocked error")

	newWrapper := func(failure, operation string) error {
		return &netxlite.ErrWrapper{Failure: failure, Operation: operation, WrappedErr: mocked}
	}

	cases := []testcase{{
		name: "DNS failure",
		err:  newWrapper(netxlite.FailureDNSNXDOMAINError, netxlite.ResolveOperation),
		want: &model.ErrorData{Code: model.ErrCodeDNS, Message: "DNS lookup failed: mocked error"},
	}, {
		name: "DNS timeout",
		err:  newWrapper(netxlite.FailureGenericTimeoutError, netxlite.ResolveOperation),
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "DNS lookup timed out"},
	}, {
		name: "connect failure",
		err:  newWrapper(netxlite.FailureConnectionRefused, netxlite.ConnectOperation),
		want: &model.ErrorData{Code: model.ErrCodeConnectionFailed, Message: "TCP connection failed: mocked error"},
	}, {
		name: "connect timeout",
		err:  newWrapper(netxlite.FailureTimedOut, netxlite.ConnectOperation),
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "TCP connection timed out"},
	}, {
		name: "TLS failure",
		err:  newWrapper(netxlite.FailureSSLUnknownAuthority, netxlite.TLSHandshakeOperation),
		want: &model.ErrorData{Code: model.ErrCodeTLS, Message: "TLS handshake failed: mocked error"},
	}, {
		name: "TLS timeout",
		err:  newWrapper(netxlite.FailureGenericTimeoutError, netxlite.TLSHandshakeOperation),
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "TLS handshake timed out"},
	}, {
		name: "HTTP handshake failure",
		err:  newWrapper(netxlite.FailureHTTPInvalidResponse, netxlite.HTTPHandshakeOperation),
		want: &model.ErrorData{Code: model.ErrCodeHTTP, Message: "HTTP handshake failed: mocked error"},
	}, {
		name: "round trip failure",
		err:  newWrapper(netxlite.FailureEOFError, netxlite.HTTPRoundTripOperation),
		want: &model.ErrorData{Code: model.ErrCodeRequestFailed, Message: "Request failed: mocked error"},
	}, {
		name: "round trip timeout",
		err:  newWrapper(netxlite.FailureGenericTimeoutError, netxlite.HTTPRoundTripOperation),
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "Request timed out"},
	}, {
		name: "body failure",
		err:  newWrapper(netxlite.FailureConnectionReset, netxlite.ReadBodyOperation),
		want: &model.ErrorData{Code: model.ErrCodeBodyRead, Message: "Failed to read body: mocked error"},
	}, {
		name: "body timeout",
		err:  newWrapper(netxlite.FailureGenericTimeoutError, netxlite.ReadBodyOperation),
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "Body read timed out"},
	}, {
		name: "unwrapped error",
		err:  mocked,
		want: &model.ErrorData{Code: model.ErrCodeRequestFailed, Message: "Request failed: mocked error"},
	}, {
		name: "unwrapped deadline",
		err:  context.DeadlineExceeded,
		want: &model.ErrorData{Code: model.ErrCodeTimeout, Message: "Request timed out"},
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := classify(tc.err)
			if resp.Success || resp.Data != nil {
				t.Fatal("expected a failure response")
			}
			if diff := cmp.Diff(tc.want, resp.Error); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
