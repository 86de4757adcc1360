package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/eigerco/erarewards/pkg/log"
)

// Protocol is the ALPN identifier spoken by relay peers.
const Protocol = "erarewards-relay/1"

const (
	// StreamTimeout bounds a single request/response exchange.
	StreamTimeout  = 5 * time.Second
	MaxIdleTimeout = 30 * time.Second
)

// Handler processes one relayed message and returns the response payload.
type Handler interface {
	HandleMessage(ctx context.Context, payload []byte) ([]byte, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

func (f HandlerFunc) HandleMessage(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

type ServerConfig struct {
	ListenAddr string
	TLSCert    *tls.Certificate
	Handler    Handler
}

// Server accepts QUIC connections and answers every stream with the result
// of its Handler.
type Server struct {
	config   ServerConfig
	listener *quic.Listener
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.TLSCert == nil {
		return nil, fmt.Errorf("TLS certificate required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("message handler required")
	}
	if err := ValidateCertificate(config.TLSCert.Leaf); err != nil {
		return nil, err
	}
	return &Server{config: config}, nil
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	tlsConfig := &tls.Config{
		Certificates:          []tls.Certificate{*s.config.TLSCert},
		NextProtos:            []string{Protocol},
		ClientAuth:            tls.RequireAnyClientCert,
		MinVersion:            tls.VersionTLS13,
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyPeer,
	}

	listener, err := quic.ListenAddr(s.config.ListenAddr, tlsConfig, &quic.Config{
		MaxIdleTimeout: MaxIdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListenerFailed, err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.listener = listener
	s.done = make(chan struct{})
	go func() {
		s.acceptLoop()
		close(s.done)
	}()
	log.Relay.Info().Str("addr", listener.Addr().String()).Msg("relay server listening")
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop closes the listener and waits for in-flight streams to finish.
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}
	s.cancel()
	err := s.listener.Close()
	<-s.done
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close listener: %w", err)
	}
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept(s.ctx)
		if err != nil {
			if s.ctx.Err() == nil {
				log.Relay.Warn().Err(err).Msg("failed to accept connection")
				continue
			}
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(conn quic.Connection) {
	defer conn.CloseWithError(0, "") //nolint:errcheck
	for {
		stream, err := conn.AcceptStream(s.ctx)
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.serveStream(stream); err != nil {
				log.Relay.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("relay stream failed")
			}
		}()
	}
}

func (s *Server) serveStream(stream quic.Stream) error {
	defer stream.Close()

	ctx, cancel := context.WithTimeout(s.ctx, StreamTimeout)
	defer cancel()

	request, err := ReadMessage(ctx, stream)
	if err != nil {
		return err
	}

	status := statusOK
	response, err := s.config.Handler.HandleMessage(ctx, request)
	if err != nil {
		status = statusError
		response = []byte(err.Error())
	}
	return WriteMessage(ctx, stream, append([]byte{status}, response...))
}
