// Package model contains the shared interfaces and data structures.
//
// This package should contain two kinds of types:
//
// 1. interfaces shared by several packages (e.g., the Resolver and the
// Dialer), so that unrelated code stays decoupled and testable;
//
// 2. data shared across packages (e.g., the ProxyRequest and the
// ProxyResponse exchanged with the web UI).
//
// Files in this package:
//
// - logger.go: apex/log compatible logger;
//
// - netx.go: network extension interfaces;
//
// - proxy.go: request execution data model and error codes.
package model
