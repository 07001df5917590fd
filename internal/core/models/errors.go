package models

import "errors"

var (
	ErrNilEntity          = errors.New("entity is nil")
	ErrNilComponent       = errors.New("component is nil")
	ErrEntityDestroyed    = errors.New("entity is destroyed")
	ErrComponentAttached  = errors.New("component is attached to another entity")
	ErrComponentDestroyed = errors.New("component is destroyed")
	ErrKindRegistered     = errors.New("component kind already registered")
	ErrUnknownKind        = errors.New("unknown component kind")
	ErrKindMismatch       = errors.New("component kind mismatch")
)
