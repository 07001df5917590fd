package scheduler

import "errors"

var (
	ErrReentrantFlush   = errors.New("flush called from inside a scheduled callback")
	ErrCallbackPanicked = errors.New("scheduled callback panicked")
)
