package proxy

//
// Mapping failures to error codes
//

import (
	"errors"
	"fmt"

	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// failureKind maps a major operation to its code and messages.
type failureKind struct {
	code           string
	prefix         string
	timeoutMessage string
}

var failureKinds = map[string]failureKind{
	netxlite.ResolveOperation: {
		code:           model.ErrCodeDNS,
		prefix:         "DNS lookup failed",
		timeoutMessage: "DNS lookup timed out",
	},
	netxlite.ConnectOperation: {
		code:           model.ErrCodeConnectionFailed,
		prefix:         "TCP connection failed",
		timeoutMessage: "TCP connection timed out",
	},
	netxlite.TLSHandshakeOperation: {
		code:           model.ErrCodeTLS,
		prefix:         "TLS handshake failed",
		timeoutMessage: "TLS handshake timed out",
	},
	netxlite.HTTPHandshakeOperation: {
		code:           model.ErrCodeHTTP,
		prefix:         "HTTP handshake failed",
		timeoutMessage: "HTTP handshake timed out",
	},
	netxlite.HTTPRoundTripOperation: {
		code:           model.ErrCodeRequestFailed,
		prefix:         "Request failed",
		timeoutMessage: "Request timed out",
	},
	netxlite.ReadBodyOperation: {
		code:           model.ErrCodeBodyRead,
		prefix:         "Failed to read body",
		timeoutMessage: "Body read timed out",
	},
}

// classify maps an error returned by a network operation to an error
// response. Timeouts map to TIMEOUT regardless of the operation. Other
// failures map according to the failed operation.
func classify(err error) *model.ProxyResponse {
	var ew *netxlite.ErrWrapper
	if !errors.As(err, &ew) {
		ew = netxlite.NewTopLevelGenericErrWrapper(err)
	}
	kind, found := failureKinds[ew.Operation]
	if !found {
		kind = failureKinds[netxlite.HTTPRoundTripOperation]
	}
	if netxlite.IsTimeoutFailure(ew.Failure) {
		return model.NewErrorResponse(model.ErrCodeTimeout, kind.timeoutMessage)
	}
	return model.NewErrorResponse(kind.code, fmt.Sprintf("%s: %s", kind.prefix, ew.Details()))
}
