package rewards

import "errors"

var (
	ErrNoValidators      = errors.New("rewards: empty validator set")
	ErrMissingDependency = errors.New("rewards: missing dependency")
	ErrUnknownEvent      = errors.New("rewards: unknown event")
)
