// Package version contains the wirescope version.
package version

// Version is the wirescope version.
const Version = "0.4.0"
