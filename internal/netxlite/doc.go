// Package netxlite contains the network primitives used to perform
// diagnostic HTTP requests one operation at a time.
//
// We provide a resolver, a dialer, and a TLS handshaker. Each of
// them logs what it does and wraps errors using ErrWrapper, whose
// Failure field is one of the FailureXXX strings and whose Operation
// field tells which major operation failed.
//
// The resolver handles IDNA and short-circuits IP addresses. The dialer
// only connects to IP endpoints: the caller resolves names first, so
// it can measure resolution and connection separately. The TLS handshaker
// defaults to the Mozilla CA bundle we embed.
package netxlite
