package pebble

import (
	"errors"

	"github.com/eigerco/erarewards/pkg/db"
)

var (
	ErrClosed          = db.ErrClosed
	ErrNotFound        = db.ErrNotFound
	ErrBatchDone       = db.ErrBatchDone
	ErrIteratorInvalid = errors.New("kv-store: iterator is not positioned")

	ErrInIteratorCreation = "create iterator: %w"
	ErrIteratorValue      = "read iterator value: %w"
)
