package models

import (
	"slices"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Archetype is the signature of a composition: the sorted multiset of
// component kinds plus the sorted tag set. Systems use its name as a cache
// key for membership; it is never the source of truth.
type Archetype struct {
	name  string
	id    uint64
	kinds []Kind
	tags  []string
}

func NewArchetype(kinds []Kind, tags []string) *Archetype {
	k := sortedKinds(kinds)
	t := sortedTags(tags)
	name := archetypeName(k, t)
	return &Archetype{
		name:  name,
		id:    xxhash.Sum64String(name),
		kinds: k,
		tags:  t,
	}
}

func (a *Archetype) Name() string { return a.name }

// ID is a 64-bit hash of Name.
func (a *Archetype) ID() uint64 { return a.id }

func (a *Archetype) Kinds() []Kind {
	return append([]Kind(nil), a.kinds...)
}

func (a *Archetype) Tags() []string {
	return append([]string(nil), a.tags...)
}

func (a *Archetype) Equal(other *Archetype) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.id == other.id && a.name == other.name
}

// Matches reports whether e currently has exactly this composition.
func (a *Archetype) Matches(e *Entity) bool {
	if a == nil || e == nil {
		return false
	}
	kinds, tags := e.composition()
	return sameComposition(kinds, tags, a.kinds, a.tags)
}

func (a *Archetype) String() string { return a.name }

// ArchetypeTable interns archetypes by name so entities sharing a
// composition share one *Archetype.
type ArchetypeTable struct {
	byName map[string]*Archetype
}

func NewArchetypeTable() *ArchetypeTable {
	return &ArchetypeTable{byName: make(map[string]*Archetype)}
}

func (t *ArchetypeTable) Resolve(kinds []Kind, tags []string) *Archetype {
	k := sortedKinds(kinds)
	tg := sortedTags(tags)
	name := archetypeName(k, tg)
	if a, ok := t.byName[name]; ok {
		return a
	}
	a := &Archetype{name: name, id: xxhash.Sum64String(name), kinds: k, tags: tg}
	t.byName[name] = a
	return a
}

func (t *ArchetypeTable) Lookup(name string) (*Archetype, bool) {
	a, ok := t.byName[name]
	return a, ok
}

func (t *ArchetypeTable) Len() int { return len(t.byName) }

func (t *ArchetypeTable) Names() []string {
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortedKinds(kinds []Kind) []Kind {
	out := append([]Kind(nil), kinds...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// archetypeName renders sorted kinds and tags as "K1,K2|t1,t2". Separators
// and backslashes inside elements are escaped so distinct compositions never
// share a name.
func archetypeName(kinds []Kind, tags []string) string {
	var sb strings.Builder
	for i, k := range kinds {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeEscaped(&sb, string(k))
	}
	sb.WriteByte('|')
	for i, t := range tags {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeEscaped(&sb, t)
	}
	return sb.String()
}

func writeEscaped(sb *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', ',', '|':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
}

// sameComposition compares sorted kind multisets and sorted tag sets.
func sameComposition(kindsA []Kind, tagsA []string, kindsB []Kind, tagsB []string) bool {
	return slices.Equal(kindsA, kindsB) && slices.Equal(tagsA, tagsB)
}
