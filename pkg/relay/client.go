package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/quic-go/quic-go"
)

type ClientConfig struct {
	// Addr is the host:port of the relay server.
	Addr    string
	TLSCert *tls.Certificate
}

// Client sends messages to a relay server, one connection per Send.
type Client struct {
	config ClientConfig
	tls    *tls.Config
}

func NewClient(config ClientConfig) (*Client, error) {
	if config.TLSCert == nil {
		return nil, fmt.Errorf("TLS certificate required")
	}
	return &Client{
		config: config,
		tls: &tls.Config{
			Certificates:          []tls.Certificate{*config.TLSCert},
			NextProtos:            []string{Protocol},
			MinVersion:            tls.VersionTLS13,
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: verifyPeer,
		},
	}, nil
}

// Send delivers payload and returns the relay's response. A handler error on
// the relay side is reported as ErrRemote.
func (c *Client) Send(ctx context.Context, payload []byte) ([]byte, error) {
	conn, err := quic.DialAddr(ctx, c.config.Addr, c.tls, &quic.Config{
		MaxIdleTimeout: MaxIdleTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDialFailed, err)
	}
	defer conn.CloseWithError(0, "") //nolint:errcheck

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open QUIC stream: %w", err)
	}
	if err := WriteMessage(ctx, stream, payload); err != nil {
		stream.CancelRead(0)
		return nil, err
	}
	// half-close so the server sees the end of the request
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("failed to close stream: %w", err)
	}

	response, err := ReadMessage(ctx, stream)
	if err != nil {
		return nil, err
	}
	if len(response) == 0 {
		return nil, fmt.Errorf("empty relay response: %w", io.ErrUnexpectedEOF)
	}
	if response[0] != statusOK {
		return nil, fmt.Errorf("%w: %s", ErrRemote, response[1:])
	}
	return response[1:], nil
}
