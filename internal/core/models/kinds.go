package models

import (
	"fmt"
	"sort"
)

// KindRegistry maps component kinds to prototypes so components can be
// created and restored by kind name.
type KindRegistry struct {
	prototypes map[Kind]Component
}

func NewKindRegistry() *KindRegistry {
	return &KindRegistry{prototypes: make(map[Kind]Component)}
}

// Register adds prototype under its own Kind.
func (r *KindRegistry) Register(prototype Component) error {
	if prototype == nil {
		return ErrNilComponent
	}
	kind := prototype.Kind()
	if _, exists := r.prototypes[kind]; exists {
		return fmt.Errorf("%w: %s", ErrKindRegistered, kind)
	}
	r.prototypes[kind] = prototype
	return nil
}

// New instantiates a fresh component of kind.
func (r *KindRegistry) New(kind Kind) (Component, error) {
	prototype, ok := r.prototypes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	c := Bind(prototype.Instantiate())
	if c.Kind() != kind {
		return nil, fmt.Errorf("%w: prototype %s instantiated %s", ErrKindMismatch, kind, c.Kind())
	}
	return c, nil
}

// Decode instantiates kind and restores it from data.
func (r *KindRegistry) Decode(kind Kind, data []byte) (Component, error) {
	c, err := r.New(kind)
	if err != nil {
		return nil, err
	}
	if err = c.Deserialize(data); err != nil {
		return nil, fmt.Errorf("restore %s: %w", kind, err)
	}
	return c, nil
}

func (r *KindRegistry) Has(kind Kind) bool {
	_, ok := r.prototypes[kind]
	return ok
}

// Kinds lists registered kinds in sorted order.
func (r *KindRegistry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.prototypes))
	for k := range r.prototypes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
