package netxlite

//
// Encode DNS queries to byte arrays
//

import (
	"github.com/miekg/dns"
)

// DNSEncoderMiekg uses github.com/miekg/dns to encode queries.
type DNSEncoderMiekg struct{}

// Encode encodes a recursive query for domain and qtype. It returns the
// serialized query along with the query ID the reply must carry.
func (e *DNSEncoderMiekg) Encode(domain string, qtype uint16) ([]byte, uint16, error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = true
	query.Question = []dns.Question{{
		Name:   dns.Fqdn(domain),
		Qtype:  qtype,
		Qclass: dns.ClassINET,
	}}
	data, err := query.Pack()
	if err != nil {
		return nil, 0, err
	}
	return data, query.Id, nil
}
