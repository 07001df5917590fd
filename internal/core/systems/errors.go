package systems

import "errors"

var (
	ErrNilEntity          = errors.New("entity is nil")
	ErrNilProcessor       = errors.New("processor is nil")
	ErrNilContext         = errors.New("system context is nil")
	ErrEmptyName          = errors.New("system name is empty")
	ErrAlreadyInitialized = errors.New("system already initialized")
)
