package mocks

import (
	"context"

	"github.com/wirescope/wirescope/internal/model"
)

// DNSTransport allows mocking model.DNSTransport.
type DNSTransport struct {
	MockRoundTrip func(ctx context.Context, query []byte) ([]byte, error)

	MockNetwork func() string

	MockAddress func() string

	MockCloseIdleConnections func()
}

var _ model.DNSTransport = &DNSTransport{}

// RoundTrip calls MockRoundTrip.
func (txp *DNSTransport) RoundTrip(ctx context.Context, query []byte) ([]byte, error) {
	return txp.MockRoundTrip(ctx, query)
}

// Network calls MockNetwork.
func (txp *DNSTransport) Network() string {
	return txp.MockNetwork()
}

// Address calls MockAddress.
func (txp *DNSTransport) Address() string {
	return txp.MockAddress()
}

// CloseIdleConnections calls MockCloseIdleConnections.
func (txp *DNSTransport) CloseIdleConnections() {
	txp.MockCloseIdleConnections()
}
