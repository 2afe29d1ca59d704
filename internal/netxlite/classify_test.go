package netxlite

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestClassifyGenericError(t *testing.T) {
	type testcase struct {
		name   string
		err    error
		expect string
	}
	cases := []testcase{{
		name:   "already wrapped",
		err:    &ErrWrapper{Failure: FailureDNSRefusedError},
		expect: FailureDNSRefusedError,
	}, {
		name:   "context deadline exceeded",
		err:    context.DeadlineExceeded,
		expect: FailureGenericTimeoutError,
	}, {
		name:   "i/o deadline exceeded",
		err:    fmt.Errorf("read: %w", os.ErrDeadlineExceeded),
		expect: FailureGenericTimeoutError,
	}, {
		name:   "net.Error with timeout",
		err:    &net.DNSError{Err: "timeout", IsTimeout: true},
		expect: FailureGenericTimeoutError,
	}, {
		name:   "connection refused",
		err:    &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
		expect: FailureConnectionRefused,
	}, {
		name:   "connection reset",
		err:    syscall.ECONNRESET,
		expect: FailureConnectionReset,
	}, {
		name:   "host unreachable",
		err:    syscall.EHOSTUNREACH,
		expect: FailureHostUnreachable,
	}, {
		name:   "network unreachable",
		err:    syscall.ENETUNREACH,
		expect: FailureNetworkUnreachable,
	}, {
		name:   "context canceled",
		err:    context.Canceled,
		expect: FailureInterrupted,
	}, {
		name:   "eof",
		err:    io.EOF,
		expect: FailureEOFError,
	}, {
		name:   "unexpected eof",
		err:    io.ErrUnexpectedEOF,
		expect: FailureEOFError,
	}, {
		name:   "closed connection",
		err:    net.ErrClosed,
		expect: FailureConnectionAlreadyClosed,
	}, {
		name:   "no such host suffix",
		err:    errors.New("lookup example.invalid: no such host"),
		expect: FailureDNSNXDOMAINError,
	}, {
		name:   "unknown",
		err:    errors.New("mocked error"),
		expect: "unknown_failure: mocked error",
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyGenericError(tc.err); got != tc.expect {
				t.Fatal("expected", tc.expect, "got", got)
			}
		})
	}
}

func TestClassifyResolverError(t *testing.T) {
	type testcase struct {
		name   string
		err    error
		expect string
	}
	cases := []testcase{{
		name:   "refused",
		err:    ErrOODNSRefused,
		expect: FailureDNSRefusedError,
	}, {
		name:   "servfail",
		err:    ErrOODNSServfail,
		expect: FailureDNSServfailError,
	}, {
		name:   "wrong query ID",
		err:    ErrDNSReplyWithWrongQueryID,
		expect: FailureDNSReplyWithWrongQueryID,
	}, {
		name:   "nxdomain from our resolver",
		err:    ErrOODNSNoSuchHost,
		expect: FailureDNSNXDOMAINError,
	}, {
		name:   "no answer",
		err:    ErrOODNSNoAnswer,
		expect: FailureDNSNoAnswer,
	}, {
		name:   "nxdomain from the stdlib",
		err:    &net.DNSError{Err: "mocked", Name: "example.invalid", IsNotFound: true},
		expect: FailureDNSNXDOMAINError,
	}, {
		name:   "falls back to the generic classifier",
		err:    io.EOF,
		expect: FailureEOFError,
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyResolverError(tc.err); got != tc.expect {
				t.Fatal("expected", tc.expect, "got", got)
			}
		})
	}
}

func TestClassifyTLSHandshakeError(t *testing.T) {
	type testcase struct {
		name   string
		err    error
		expect string
	}
	cases := []testcase{{
		name:   "invalid hostname",
		err:    x509.HostnameError{Certificate: &x509.Certificate{}, Host: "example.com"},
		expect: FailureSSLInvalidHostname,
	}, {
		name:   "unknown authority",
		err:    &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}},
		expect: FailureSSLUnknownAuthority,
	}, {
		name:   "invalid certificate",
		err:    x509.CertificateInvalidError{Cert: &x509.Certificate{}, Reason: x509.Expired},
		expect: FailureSSLInvalidCertificate,
	}, {
		name:   "alert",
		err:    fmt.Errorf("remote error: %w", tls.AlertError(40)),
		expect: FailureSSLFailedHandshake,
	}, {
		name:   "falls back to the generic classifier",
		err:    context.DeadlineExceeded,
		expect: FailureGenericTimeoutError,
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTLSHandshakeError(tc.err); got != tc.expect {
				t.Fatal("expected", tc.expect, "got", got)
			}
		})
	}
}

func TestIsTimeoutFailure(t *testing.T) {
	if !IsTimeoutFailure(FailureGenericTimeoutError) {
		t.Fatal("expected true")
	}
	if !IsTimeoutFailure(FailureTimedOut) {
		t.Fatal("expected true")
	}
	if IsTimeoutFailure(FailureEOFError) {
		t.Fatal("expected false")
	}
}
