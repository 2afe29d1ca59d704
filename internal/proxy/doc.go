// Package proxy executes diagnostic HTTP requests.
//
// The Executor performs each phase of a request by itself: DNS
// resolution, TCP connect, TLS handshake, HTTP/1.1 exchange and
// redirect following. This allows it to measure every phase and to
// report the TLS session and the certificate presented by the server.
//
// We never reuse connections: every hop uses a fresh connection that
// is closed when the hop is over.
package proxy
