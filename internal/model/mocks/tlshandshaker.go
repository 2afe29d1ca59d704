package mocks

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/wirescope/wirescope/internal/model"
)

// TLSHandshaker is a mockable TLS handshaker.
type TLSHandshaker struct {
	MockHandshake func(ctx context.Context, conn net.Conn, config *tls.Config) (model.TLSConn, error)
}

var _ model.TLSHandshaker = &TLSHandshaker{}

// Handshake calls MockHandshake.
func (th *TLSHandshaker) Handshake(ctx context.Context, conn net.Conn, config *tls.Config) (model.TLSConn, error) {
	return th.MockHandshake(ctx, conn, config)
}
