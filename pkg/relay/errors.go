package relay

import "errors"

var (
	ErrInvalidCertificate = errors.New("invalid certificate")
	ErrListenerFailed     = errors.New("failed to create QUIC listener")
	ErrDialFailed         = errors.New("failed to dial relay")
	ErrMessageTooLarge    = errors.New("message exceeds maximum size")
	ErrRemote             = errors.New("relay rejected message")
	ErrServerStopped      = errors.New("relay server stopped")
)
