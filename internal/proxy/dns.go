package proxy

//
// Name resolution
//

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// DNSResult is the result of resolving a hostname.
type DNSResult struct {
	// IPs contains the resolved addresses in the order we received them.
	IPs []string

	// Duration is the time it took to resolve. It is zero when the
	// hostname was already an IP address.
	Duration time.Duration
}

var (
	sharedResolverOnce sync.Once
	sharedResolver     model.Resolver
)

// SharedResolver returns the process-wide system resolver, creating it
// the first time it is called.
func SharedResolver() model.Resolver {
	sharedResolverOnce.Do(func() {
		sharedResolver = netxlite.NewResolverStdlib(log.Log)
	})
	return sharedResolver
}

// Resolve resolves host using reso. An IP address is returned as is
// without performing any lookup. An empty result is an error.
func Resolve(ctx context.Context, reso model.Resolver, host string) (*DNSResult, error) {
	if net.ParseIP(host) != nil {
		return &DNSResult{IPs: []string{host}}, nil
	}
	start := time.Now()
	addrs, err := reso.LookupHost(ctx, host)
	if err != nil {
		return nil, netxlite.NewErrWrapper(netxlite.ClassifyResolverError, netxlite.ResolveOperation, err)
	}
	if len(addrs) <= 0 {
		return nil, netxlite.NewErrWrapper(
			netxlite.ClassifyResolverError, netxlite.ResolveOperation, netxlite.ErrNoAddresses)
	}
	return &DNSResult{IPs: addrs, Duration: time.Since(start)}, nil
}
