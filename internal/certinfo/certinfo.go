// Package certinfo extracts a summary of the peer certificate.
package certinfo

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"net"
	"time"
)

// Info summarizes an X.509 certificate. Empty fields mean the
// certificate did not parse.
type Info struct {
	// Issuer is the issuer first CN or the full issuer DN.
	Issuer string

	// Subject is the subject first CN or the full subject DN.
	Subject string

	// ValidFrom is the NotBefore bound as Unix seconds.
	ValidFrom uint64

	// ValidTo is the NotAfter bound as Unix seconds.
	ValidTo uint64

	// SANs contains DNS names, then IPv4 addresses, then IPv6 addresses.
	SANs []string
}

// Captured is the certificate information we capture from a live TLS session.
type Captured struct {
	Info

	// Protocol is the negotiated version, e.g., "TLS 1.3".
	Protocol string

	// Cipher is the negotiated cipher suite name.
	Cipher string
}

var oidCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}

// Parse parses a DER encoded certificate. This function never fails: when
// the input is not a valid certificate it returns a zero Info.
func Parse(der []byte) Info {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return Info{}
	}
	return fromCertificate(cert)
}

func fromCertificate(cert *x509.Certificate) Info {
	return Info{
		Issuer:    nameString(cert.Issuer),
		Subject:   nameString(cert.Subject),
		ValidFrom: unixSeconds(cert.NotBefore),
		ValidTo:   unixSeconds(cert.NotAfter),
		SANs:      subjectAltNames(cert),
	}
}

// nameString returns the first CN or the whole DN.
func nameString(name pkix.Name) string {
	for _, atv := range name.Names {
		if !atv.Type.Equal(oidCommonName) {
			continue
		}
		if s, ok := atv.Value.(string); ok {
			return s
		}
		return fmt.Sprint(atv.Value)
	}
	return name.String()
}

func unixSeconds(t time.Time) uint64 {
	if v := t.Unix(); v > 0 {
		return uint64(v)
	}
	return 0
}

func subjectAltNames(cert *x509.Certificate) []string {
	var sans, v4, v6 []string
	sans = append(sans, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		switch len(ip) {
		case net.IPv4len:
			v4 = append(v4, ip.String())
		case net.IPv6len:
			v6 = append(v6, fmt.Sprintf("IPv6:%02x%02x:...", ip[0], ip[1]))
		}
	}
	sans = append(sans, v4...)
	return append(sans, v6...)
}

// FromConnectionState captures the negotiated protocol and cipher along
// with the leaf certificate information. It returns nil when the
// peer did not present any certificate.
func FromConnectionState(state tls.ConnectionState) *Captured {
	if len(state.PeerCertificates) <= 0 {
		return nil
	}
	return &Captured{
		Info:     fromCertificate(state.PeerCertificates[0]),
		Protocol: ProtocolString(state.Version),
		Cipher:   tls.CipherSuiteName(state.CipherSuite),
	}
}

// ProtocolString maps a TLS version to a human readable string.
func ProtocolString(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return "TLS"
	}
}

// IsValid returns whether now falls within [from, to].
func IsValid(from, to uint64, now time.Time) bool {
	t := unixSeconds(now)
	return t >= from && t <= to
}
