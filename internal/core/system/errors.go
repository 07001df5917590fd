package system

import "errors"

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
	ErrNilEntity      = errors.New("entity is nil")
	ErrUnknownEntity  = errors.New("entity is not registered with this world")
	ErrWorldClosed    = errors.New("world is shut down")
	ErrInvalidRate    = errors.New("frame rate must be positive")
)
