package models

import (
	"fmt"

	"github.com/zeusync/ecs/pkg/encoding"
)

// Kind names a concrete component variant. An entity's composition is the
// multiset of its component kinds.
type Kind string

// Component is the capability surface shared by every component kind.
// Concrete kinds embed Base and implement Kind, Instantiate, Serialize and
// Deserialize.
type Component interface {
	encoding.Serializable

	Kind() Kind
	// Instantiate returns a fresh component of the same kind with default values.
	Instantiate() Component

	IsActive() bool
	SetActive(bool)
	IsDirty() bool
	SetDirty(bool)

	Entity() *Entity
	OnDirty(fn func(Component, bool)) (cancel func())
	OnDestroyed(fn func(Component)) (cancel func())
	Destroy()

	base() *Base
}

// ActiveHook is implemented by kinds that react to SetActive.
type ActiveHook interface {
	OnSetActive(active bool)
}

type listener[F any] struct {
	id uint64
	fn F
}

// Base holds the bookkeeping every component carries. The zero value is an
// active, clean, detached component.
type Base struct {
	inactive  bool
	dirty     bool
	destroyed bool

	self   Component
	entity *Entity

	nextListener uint64
	dirtyFns     []listener[func(Component, bool)]
	destroyFns   []listener[func(Component)]
}

func (b *Base) base() *Base { return b }

// Bind records c as the subject passed to notifications. Constructors of
// concrete kinds call it; Entity.AddComponent calls it too.
func Bind[C Component](c C) C {
	c.base().self = c
	return c
}

func (b *Base) IsActive() bool { return !b.inactive }

// SetActive toggles processing eligibility. It always marks the component
// dirty (without a dirty notification) and then runs OnSetActive when the
// kind implements ActiveHook.
func (b *Base) SetActive(active bool) {
	b.inactive = !active
	b.dirty = true
	if hook, ok := b.self.(ActiveHook); ok {
		hook.OnSetActive(active)
	}
}

func (b *Base) IsDirty() bool { return b.dirty }

// SetDirty stores the flag and notifies dirty listeners with the new value.
func (b *Base) SetDirty(dirty bool) {
	b.dirty = dirty
	for _, l := range append([]listener[func(Component, bool)](nil), b.dirtyFns...) {
		l.fn(b.self, dirty)
	}
}

// Entity returns the owning entity, or nil while detached.
func (b *Base) Entity() *Entity { return b.entity }

func (b *Base) OnDirty(fn func(Component, bool)) func() {
	b.nextListener++
	id := b.nextListener
	b.dirtyFns = append(b.dirtyFns, listener[func(Component, bool)]{id: id, fn: fn})
	return func() {
		b.dirtyFns = removeListener(b.dirtyFns, id)
	}
}

func (b *Base) OnDestroyed(fn func(Component)) func() {
	b.nextListener++
	id := b.nextListener
	b.destroyFns = append(b.destroyFns, listener[func(Component)]{id: id, fn: fn})
	return func() {
		b.destroyFns = removeListener(b.destroyFns, id)
	}
}

// Destroy notifies destroyed listeners and detaches the component from its
// entity. Calling it twice is a no-op.
func (b *Base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	for _, l := range append([]listener[func(Component)](nil), b.destroyFns...) {
		l.fn(b.self)
	}
	if b.entity != nil && b.self != nil {
		b.entity.detach(b.self)
	}
	b.entity = nil
}

func removeListener[F any](ls []listener[F], id uint64) []listener[F] {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}

// SafeSet is the only sanctioned mutation path for component fields. While
// the component is inactive it returns the current value and changes
// nothing. Otherwise it assigns value, marks the component dirty, fires one
// dirty notification, and returns the new value.
func SafeSet[T any](b *Base, field *T, value T) T {
	if b.inactive {
		return *field
	}
	*field = value
	b.SetDirty(true)
	return *field
}

type state[T any] struct {
	Active bool `yaml:"active"`
	Fields T    `yaml:"fields"`
}

// MarshalState renders the active flag and fields as a YAML mapping.
func MarshalState[T any](b *Base, fields T) ([]byte, error) {
	return encoding.EncodeYAML(state[T]{Active: !b.inactive, Fields: fields})
}

// UnmarshalState restores the active flag and decodes fields. Restoring is a
// programmatic overwrite: the dirty flag is left as it was and no
// notification fires.
func UnmarshalState[T any](b *Base, data []byte, fields *T) error {
	var s state[T]
	if err := encoding.DecodeYAML(data, &s); err != nil {
		return err
	}
	b.inactive = !s.Active
	*fields = s.Fields
	return nil
}

// CloneComponent deep-copies c through its persistence round trip.
func CloneComponent(c Component) (Component, error) {
	if c == nil {
		return nil, ErrNilComponent
	}
	data, err := c.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", c.Kind(), err)
	}
	clone := Bind(c.Instantiate())
	if err = clone.Deserialize(data); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", c.Kind(), err)
	}
	return clone, nil
}
