package fiber

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stealthrocket/fiber/ecs"
)

// Mode is the kind of access a coroutine holds on a piece of data.
type Mode uint8

const (
	// Read access may be shared between any number of coroutines.
	Read Mode = iota + 1
	// Write access is exclusive.
	Write
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// DataSource identifies what an access right is scoped to: either the
// global resources of the world or the components of one entity.
type DataSource struct {
	entity ecs.Entity
}

// Global is the DataSource of world resources.
func Global() DataSource { return DataSource{} }

// EntitySource is the DataSource of the components owned by e.
func EntitySource(e ecs.Entity) DataSource { return DataSource{entity: e} }

// IsGlobal reports whether s designates world resources.
func (s DataSource) IsGlobal() bool { return s.entity == ecs.NoEntity }

// Entity returns the entity s is scoped to, or ecs.NoEntity for Global.
func (s DataSource) Entity() ecs.Entity { return s.entity }

func (s DataSource) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "entity " + s.entity.String()
}

type accessKey struct {
	source    DataSource
	component ecs.ComponentID
}

// Access is one entry of an AccessSet.
type Access struct {
	Source    DataSource
	Component ecs.ComponentID
	Mode      Mode
}

func (a Access) String() string {
	return fmt.Sprintf("%s(%s, component %d)", a.Mode, a.Source, a.Component)
}

// AccessSet records the data a coroutine reads or writes.
//
// Within one set each (source, component) key holds a single mode. Between
// sets, two entries conflict when they share a key and at least one of them
// is a Write. The zero value is an empty set ready to use.
type AccessSet struct {
	entries map[accessKey]Mode
}

func compatible(a, b Mode) bool { return a == Read && b == Read }

// AddRead records read access to component of source. It returns false and
// leaves the set unchanged if the set already holds write access on it.
func (s *AccessSet) AddRead(source DataSource, component ecs.ComponentID) bool {
	return s.add(accessKey{source, component}, Read)
}

// AddWrite records exclusive access to component of source. It returns
// false and leaves the set unchanged if the set already holds any access on
// it.
func (s *AccessSet) AddWrite(source DataSource, component ecs.ComponentID) bool {
	return s.add(accessKey{source, component}, Write)
}

func (s *AccessSet) add(k accessKey, m Mode) bool {
	if have, ok := s.entries[k]; ok {
		return compatible(have, m)
	}
	if s.entries == nil {
		s.entries = make(map[accessKey]Mode)
	}
	s.entries[k] = m
	return true
}

// Merge adds every entry of other to s. If any entry conflicts, Merge
// returns false and s is left untouched.
func (s *AccessSet) Merge(other *AccessSet) bool {
	if s.Conflicts(other) {
		return false
	}
	for k, m := range other.entries {
		s.add(k, m)
	}
	return true
}

// Conflicts reports whether s and other hold incompatible access on the
// same data.
func (s *AccessSet) Conflicts(other *AccessSet) bool {
	a, b := s.entries, other.entries
	if len(b) < len(a) {
		a, b = b, a
	}
	for k, m := range a {
		if n, ok := b[k]; ok && !compatible(m, n) {
			return true
		}
	}
	return false
}

// Union adds every entry of other to s without conflict checks; Write wins
// over Read on shared keys. The executor uses it to accumulate the data
// claimed by all coroutines selected in a tick.
func (s *AccessSet) Union(other *AccessSet) {
	for k, m := range other.entries {
		if s.entries == nil {
			s.entries = make(map[accessKey]Mode, len(other.entries))
		}
		if m > s.entries[k] {
			s.entries[k] = m
		}
	}
}

// Len returns the number of entries in s.
func (s *AccessSet) Len() int { return len(s.entries) }

// Entries returns the entries of s, global entries first, then ordered by
// entity and component.
func (s *AccessSet) Entries() []Access {
	entries := make([]Access, 0, len(s.entries))
	for k, m := range s.entries {
		entries = append(entries, Access{Source: k.source, Component: k.component, Mode: m})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Source != b.Source {
			return a.Source.entity < b.Source.entity
		}
		return a.Component < b.Component
	})
	return entries
}

func (s *AccessSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, a := range s.Entries() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte('}')
	return b.String()
}
