package netxlite

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
)

func TestDNSDecoderMiekg(t *testing.T) {
	t.Run("with invalid data", func(t *testing.T) {
		d := &DNSDecoderMiekg{}
		if _, err := d.DecodeLookupHost(dns.TypeA, []byte{0x00}, 0); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("with wrong query ID", func(t *testing.T) {
		query, queryID, err := (&DNSEncoderMiekg{}).Encode("dns.google", dns.TypeA)
		if err != nil {
			t.Fatal(err)
		}
		reply := dnsGenReply(t, query, dns.RcodeSuccess, "8.8.8.8")
		d := &DNSDecoderMiekg{}
		_, err = d.DecodeLookupHost(dns.TypeA, reply, queryID+1)
		if !errors.Is(err, ErrDNSReplyWithWrongQueryID) {
			t.Fatal("unexpected err", err)
		}
	})

	t.Run("maps rcodes to errors", func(t *testing.T) {
		cases := map[int]error{
			dns.RcodeNameError:      ErrOODNSNoSuchHost,
			dns.RcodeRefused:        ErrOODNSRefused,
			dns.RcodeServerFailure:  ErrOODNSServfail,
			dns.RcodeNotImplemented: ErrOODNSMisbehaving,
		}
		for rcode, expected := range cases {
			query, queryID, err := (&DNSEncoderMiekg{}).Encode("dns.google", dns.TypeA)
			if err != nil {
				t.Fatal(err)
			}
			reply := dnsGenReply(t, query, rcode)
			_, err = (&DNSDecoderMiekg{}).DecodeLookupHost(dns.TypeA, reply, queryID)
			if !errors.Is(err, expected) {
				t.Fatal("rcode", rcode, "unexpected err", err)
			}
		}
	})

	t.Run("ignores answers of the wrong type", func(t *testing.T) {
		query, queryID, err := (&DNSEncoderMiekg{}).Encode("dns.google", dns.TypeAAAA)
		if err != nil {
			t.Fatal(err)
		}
		msg := new(dns.Msg)
		if err := msg.Unpack(query); err != nil {
			t.Fatal(err)
		}
		reply := new(dns.Msg)
		reply.SetReply(msg)
		rr, err := dns.NewRR("dns.google. 0 IN A 8.8.8.8")
		if err != nil {
			t.Fatal(err)
		}
		reply.Answer = append(reply.Answer, rr)
		data, err := reply.Pack()
		if err != nil {
			t.Fatal(err)
		}
		_, err = (&DNSDecoderMiekg{}).DecodeLookupHost(dns.TypeAAAA, data, queryID)
		if !errors.Is(err, ErrOODNSNoAnswer) {
			t.Fatal("unexpected err", err)
		}
	})
}

func TestDNSEncoderMiekg(t *testing.T) {
	query, queryID, err := (&DNSEncoderMiekg{}).Encode("dns.google", dns.TypeAAAA)
	if err != nil {
		t.Fatal(err)
	}
	msg := new(dns.Msg)
	if err := msg.Unpack(query); err != nil {
		t.Fatal(err)
	}
	if msg.Id != queryID {
		t.Fatal("unexpected query ID")
	}
	if !msg.RecursionDesired {
		t.Fatal("expected recursion desired")
	}
	if len(msg.Question) != 1 {
		t.Fatal("expected a single question")
	}
	q := msg.Question[0]
	if q.Name != "dns.google." || q.Qtype != dns.TypeAAAA || q.Qclass != dns.ClassINET {
		t.Fatal("unexpected question", q)
	}
}
