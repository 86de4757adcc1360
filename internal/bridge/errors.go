package bridge

import "errors"

var (
	ErrZeroDestination  = errors.New("bridge: destination is the zero address")
	ErrPayloadTooLarge  = errors.New("bridge: payload too large")
	ErrInvalidGasLimit  = errors.New("bridge: invalid gas limit")
	ErrStaleTicket      = errors.New("bridge: ticket no longer matches the queue")
	ErrInvalidResponse  = errors.New("bridge: invalid relay response")
	ErrUnknownSelector  = errors.New("bridge: unknown payload selector")
	ErrMalformedMessage = errors.New("bridge: malformed message")
)
