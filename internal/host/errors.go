package host

import "errors"

var (
	ErrInvalidSetup     = errors.New("invalid simulator setup")
	ErrNoEngine         = errors.New("no engine attached")
	ErrEraInProgress    = errors.New("era already in progress")
	ErrNoActiveEra      = errors.New("no era in progress")
	ErrEmptySchedule    = errors.New("sessions per era and blocks per session must be positive")
	ErrUnknownIndex     = errors.New("validator index out of range")
	ErrUnknownValidator = errors.New("unknown validator")
)
