package netxlite

//
// Mapping Go errors to failure strings
//

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// Failure strings. The names loosely follow the df-007-errors
// conventions used by network measurement tools.
const (
	FailureConnectionRefused        = "connection_refused"
	FailureConnectionReset          = "connection_reset"
	FailureConnectionAlreadyClosed  = "connection_already_closed"
	FailureHostUnreachable          = "host_unreachable"
	FailureNetworkUnreachable       = "network_unreachable"
	FailureTimedOut                 = "timed_out"
	FailureGenericTimeoutError      = "generic_timeout_error"
	FailureInterrupted              = "interrupted"
	FailureEOFError                 = "eof_error"
	FailureDNSNXDOMAINError         = "dns_nxdomain_error"
	FailureDNSNoAnswer              = "dns_no_answer"
	FailureDNSRefusedError          = "dns_refused_error"
	FailureDNSServerMisbehaving     = "dns_server_misbehaving"
	FailureDNSServfailError         = "dns_servfail_error"
	FailureDNSReplyWithWrongQueryID = "dns_reply_with_wrong_query_id"
	FailureSSLInvalidHostname       = "ssl_invalid_hostname"
	FailureSSLUnknownAuthority      = "ssl_unknown_authority"
	FailureSSLInvalidCertificate    = "ssl_invalid_certificate"
	FailureSSLFailedHandshake       = "ssl_failed_handshake"
	FailureHTTPInvalidResponse      = "http_invalid_response"
)

// IsTimeoutFailure returns whether the given failure string
// represents a timer expiring, regardless of which timer.
func IsTimeoutFailure(failure string) bool {
	return failure == FailureGenericTimeoutError || failure == FailureTimedOut
}

// ClassifyGenericError maps an error occurred during an operation
// to a failure string. This specific classifier is the most
// generic one. You usually use it when mapping I/O errors. You should
// check whether there is a specific classifier for more specific
// operations (e.g., DNS resolution, TLS handshake).
//
// If the input error is an *ErrWrapper we don't perform
// the classification again and we return its Failure.
//
// If everything else fails, this classifier returns a string
// like "unknown_failure: XXX" where XXX is the original error string.
func ClassifyGenericError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if failure := classifyTimeoutError(err); failure != "" {
		return failure
	}
	if failure := classifySyscallError(err); failure != "" {
		return failure
	}
	if errors.Is(err, context.Canceled) {
		return FailureInterrupted
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FailureEOFError
	}
	if errors.Is(err, net.ErrClosed) {
		return FailureConnectionAlreadyClosed
	}
	if failure := classifyWithStringSuffix(err); failure != "" {
		return failure
	}
	return fmt.Sprintf("unknown_failure: %s", err.Error())
}

// classifyTimeoutError returns FailureGenericTimeoutError when any
// deadline or timer expired, or the empty string otherwise.
func classifyTimeoutError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return FailureGenericTimeoutError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureGenericTimeoutError
	}
	return ""
}

// classifySyscallError maps well known errno values to failures.
func classifySyscallError(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case syscall.ECONNREFUSED:
		return FailureConnectionRefused
	case syscall.ECONNRESET:
		return FailureConnectionReset
	case syscall.EHOSTUNREACH:
		return FailureHostUnreachable
	case syscall.ENETUNREACH:
		return FailureNetworkUnreachable
	case syscall.ETIMEDOUT:
		return FailureTimedOut
	case syscall.ECANCELED:
		return FailureInterrupted
	default:
		return ""
	}
}

// classifyWithStringSuffix is a subset of ClassifyGenericError that
// performs classification by looking at error suffixes. This function
// will return an empty string if it cannot classify the error.
func classifyWithStringSuffix(err error) string {
	s := err.Error()
	if strings.HasSuffix(s, "operation was canceled") {
		return FailureInterrupted
	}
	if strings.HasSuffix(s, DNSNoSuchHostSuffix) {
		return FailureDNSNXDOMAINError
	}
	if strings.HasSuffix(s, DNSServerMisbehavingSuffix) {
		return FailureDNSServerMisbehaving
	}
	if strings.HasSuffix(s, DNSNoAnswerSuffix) {
		return FailureDNSNoAnswer
	}
	if strings.HasSuffix(s, "use of closed network connection") {
		return FailureConnectionAlreadyClosed
	}
	return "" // not found
}

// We use these strings to string-match errors in the standard library
// and map such errors to failures.
const (
	DNSNoSuchHostSuffix        = "no such host"
	DNSServerMisbehavingSuffix = "server misbehaving"
	DNSNoAnswerSuffix          = "no answer from DNS server"
)

// These errors are returned by the DNS-over-UDP resolver. Their suffix
// matches the equivalent unexported errors used by the Go standard library.
var (
	ErrOODNSNoSuchHost  = fmt.Errorf("wirescope: %s", DNSNoSuchHostSuffix)
	ErrOODNSRefused     = errors.New("wirescope: refused")
	ErrOODNSServfail    = errors.New("wirescope: servfail")
	ErrOODNSMisbehaving = fmt.Errorf("wirescope: %s", DNSServerMisbehavingSuffix)
	ErrOODNSNoAnswer    = fmt.Errorf("wirescope: %s", DNSNoAnswerSuffix)
)

// ClassifyResolverError maps DNS resolution errors to failure strings.
//
// If the input error is an *ErrWrapper we don't perform
// the classification again and we return its Failure.
//
// If this classifier fails, it calls ClassifyGenericError and
// returns to the caller its return value.
func ClassifyResolverError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	if errors.Is(err, ErrOODNSRefused) {
		return FailureDNSRefusedError
	}
	if errors.Is(err, ErrOODNSServfail) {
		return FailureDNSServfailError
	}
	if errors.Is(err, ErrDNSReplyWithWrongQueryID) {
		return FailureDNSReplyWithWrongQueryID
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return FailureDNSNXDOMAINError
	}
	return ClassifyGenericError(err)
}

// ClassifyTLSHandshakeError maps an error occurred during the TLS
// handshake to a failure string.
//
// If the input error is an *ErrWrapper we don't perform
// the classification again and we return its Failure.
//
// If this classifier fails, it calls ClassifyGenericError and
// returns to the caller its return value.
func ClassifyTLSHandshakeError(err error) string {
	var errwrapper *ErrWrapper
	if errors.As(err, &errwrapper) {
		return errwrapper.Error() // we've already wrapped it
	}
	var x509HostnameError x509.HostnameError
	if errors.As(err, &x509HostnameError) {
		// Test case: https://wrong.host.badssl.com/
		return FailureSSLInvalidHostname
	}
	var x509UnknownAuthorityError x509.UnknownAuthorityError
	if errors.As(err, &x509UnknownAuthorityError) {
		// Test case: https://self-signed.badssl.com/
		return FailureSSLUnknownAuthority
	}
	var x509CertificateInvalidError x509.CertificateInvalidError
	if errors.As(err, &x509CertificateInvalidError) {
		// Test case: https://expired.badssl.com/
		return FailureSSLInvalidCertificate
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return FailureSSLFailedHandshake
	}
	return ClassifyGenericError(err)
}
