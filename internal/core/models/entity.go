package models

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// EntityID is the opaque identity of an entity.
type EntityID uuid.UUID

func NewEntityID() EntityID { return EntityID(uuid.New()) }

func ParseEntityID(s string) (EntityID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, fmt.Errorf("parse entity id: %w", err)
	}
	return EntityID(id), nil
}

func (id EntityID) String() string { return uuid.UUID(id).String() }
func (id EntityID) IsZero() bool   { return id == EntityID(uuid.Nil) }

// Entity is an identity holding an ordered list of components and a tag set.
// Equality is identity: a world keeps exactly one *Entity per id, so callers
// compare pointers.
type Entity struct {
	id       EntityID
	name     string
	inactive bool

	components []Component
	tags       map[string]struct{}

	table     *ArchetypeTable
	archetype *Archetype
	stale     bool
	destroyed bool
}

type EntityOption func(*Entity)

// WithArchetypeTable interns the entity's archetypes through t.
func WithArchetypeTable(t *ArchetypeTable) EntityOption {
	return func(e *Entity) { e.table = t }
}

// WithID overrides the generated identity. Storage uses it on restore.
func WithID(id EntityID) EntityOption {
	return func(e *Entity) { e.id = id }
}

func NewEntity(name string, opts ...EntityOption) *Entity {
	e := &Entity{
		id:    NewEntityID(),
		name:  name,
		tags:  make(map[string]struct{}),
		stale: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entity) ID() EntityID      { return e.id }
func (e *Entity) Name() string      { return e.name }
func (e *Entity) IsDestroyed() bool { return e.destroyed }
func (e *Entity) IsActive() bool    { return !e.inactive }

func (e *Entity) SetActive(active bool) { e.inactive = !active }

// Archetype returns the signature of the current composition, recomputing it
// if the composition changed since the last call. It returns nil when the
// entity is destroyed or holds neither components nor tags.
func (e *Entity) Archetype() *Archetype {
	if e.destroyed {
		return nil
	}
	if !e.stale {
		return e.archetype
	}
	e.stale = false
	if len(e.components) == 0 && len(e.tags) == 0 {
		e.archetype = nil
		return nil
	}
	kinds := e.Kinds()
	tags := e.Tags()
	if e.table != nil {
		e.archetype = e.table.Resolve(kinds, tags)
	} else {
		e.archetype = NewArchetype(kinds, tags)
	}
	return e.archetype
}

// AddComponent attaches c. Adding a component already attached to e is a
// no-op.
func (e *Entity) AddComponent(c Component) (Component, error) {
	if e.destroyed {
		return nil, ErrEntityDestroyed
	}
	if c == nil {
		return nil, ErrNilComponent
	}
	b := c.base()
	switch {
	case b.destroyed:
		return nil, fmt.Errorf("%w: %s", ErrComponentDestroyed, c.Kind())
	case b.entity == e:
		return c, nil
	case b.entity != nil:
		return nil, fmt.Errorf("%w: %s", ErrComponentAttached, c.Kind())
	}
	Bind(c)
	b.entity = e
	e.components = append(e.components, c)
	e.stale = true
	return c, nil
}

// RemoveComponent detaches c without destroying it.
func (e *Entity) RemoveComponent(c Component) bool {
	if c == nil {
		return false
	}
	return e.detach(c)
}

// RemoveKind detaches every component of kind and reports how many went.
func (e *Entity) RemoveKind(kind Kind) int {
	removed := 0
	kept := e.components[:0]
	for _, c := range e.components {
		if c.Kind() == kind {
			c.base().entity = nil
			removed++
			continue
		}
		kept = append(kept, c)
	}
	clearTail(e.components, len(kept))
	e.components = kept
	if removed > 0 {
		e.stale = true
	}
	return removed
}

func (e *Entity) detach(c Component) bool {
	for i, existing := range e.components {
		if existing != c {
			continue
		}
		copy(e.components[i:], e.components[i+1:])
		e.components[len(e.components)-1] = nil
		e.components = e.components[:len(e.components)-1]
		c.base().entity = nil
		e.stale = true
		return true
	}
	return false
}

func clearTail(cs []Component, from int) {
	for i := from; i < len(cs); i++ {
		cs[i] = nil
	}
}

// Components returns a copy of the component list in attach order.
func (e *Entity) Components() []Component {
	return append([]Component(nil), e.components...)
}

func (e *Entity) ComponentsCount() int { return len(e.components) }

func (e *Entity) HasComponent(c Component) bool {
	for _, existing := range e.components {
		if existing == c {
			return true
		}
	}
	return false
}

// Kinds returns the kind of every attached component, in attach order.
func (e *Entity) Kinds() []Kind {
	out := make([]Kind, len(e.components))
	for i, c := range e.components {
		out[i] = c.Kind()
	}
	return out
}

// HasKinds reports whether the entity holds at least as many components of
// each kind as listed. HasKinds() with no arguments is true.
func (e *Entity) HasKinds(kinds ...Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	need := make(map[Kind]int, len(kinds))
	for _, k := range kinds {
		need[k]++
	}
	for _, c := range e.components {
		if n, ok := need[c.Kind()]; ok {
			if n == 1 {
				delete(need, c.Kind())
			} else {
				need[c.Kind()] = n - 1
			}
		}
	}
	return len(need) == 0
}

// Get returns the first component of type T.
func Get[T Component](e *Entity) (T, bool) {
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// GetAll returns every component of type T in attach order.
func GetAll[T Component](e *Entity) []T {
	var out []T
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func Has[T Component](e *Entity) bool {
	_, ok := Get[T](e)
	return ok
}

func (e *Entity) AddTag(tag string) error {
	if e.destroyed {
		return ErrEntityDestroyed
	}
	if _, ok := e.tags[tag]; ok {
		return nil
	}
	e.tags[tag] = struct{}{}
	e.stale = true
	return nil
}

func (e *Entity) RemoveTag(tag string) bool {
	if _, ok := e.tags[tag]; !ok {
		return false
	}
	delete(e.tags, tag)
	e.stale = true
	return true
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the tag set sorted.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for t := range e.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasSameComposition compares kind multisets and tag sets, ignoring order.
func (e *Entity) HasSameComposition(other *Entity) bool {
	if other == nil {
		return false
	}
	kinds, tags := e.composition()
	otherKinds, otherTags := other.composition()
	return sameComposition(kinds, tags, otherKinds, otherTags)
}

// HasComposition compares the entity against an explicit component list and
// tag list, ignoring order.
func (e *Entity) HasComposition(components []Component, tags []string) bool {
	kinds := make([]Kind, 0, len(components))
	for _, c := range components {
		if c == nil {
			return false
		}
		kinds = append(kinds, c.Kind())
	}
	own, ownTags := e.composition()
	return sameComposition(own, ownTags, sortedKinds(kinds), sortedTags(tags))
}

// composition returns the sorted kind multiset and the sorted tag set.
func (e *Entity) composition() ([]Kind, []string) {
	return sortedKinds(e.Kinds()), e.Tags()
}

func (e *Entity) compositionName() string {
	return archetypeName(e.composition())
}

// Clone deep-copies components and tags under a new identity.
func (e *Entity) Clone() (*Entity, error) {
	if e.destroyed {
		return nil, ErrEntityDestroyed
	}
	clone := NewEntity(e.name, WithArchetypeTable(e.table))
	clone.inactive = e.inactive
	for _, c := range e.components {
		cc, err := CloneComponent(c)
		if err != nil {
			return nil, fmt.Errorf("clone %s: %w", e, err)
		}
		if _, err = clone.AddComponent(cc); err != nil {
			return nil, fmt.Errorf("clone %s: %w", e, err)
		}
	}
	for t := range e.tags {
		clone.tags[t] = struct{}{}
	}
	return clone, nil
}

// Destroy destroys every component, clears the tags, and invalidates the
// identity.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	for _, c := range e.Components() {
		c.Destroy()
	}
	e.components = nil
	e.tags = make(map[string]struct{})
	e.id = EntityID{}
	e.archetype = nil
	e.stale = true
	e.destroyed = true
}

func (e *Entity) String() string {
	if e.destroyed {
		return fmt.Sprintf("Entity(%s destroyed)", e.name)
	}
	return fmt.Sprintf("Entity(%s %s [%s])", e.name, e.id, e.compositionName())
}
