// Package ecs is a small in-memory entity-component store.
//
// It implements the world contract expected by the fiber package: component
// types are registered once and identified by a dense ComponentID, entities
// own at most one value of each component type, and global resources are
// stored alongside entities using the same identifiers.
//
// A World is not safe for concurrent use.
package ecs

import (
	"fmt"
	"reflect"
)

// ComponentID identifies a registered component type.
type ComponentID uint32

// Entity is an opaque identifier owning zero or more components.
//
// The low 32 bits hold the slot index and the high 32 bits hold the slot
// generation, so an entity which was despawned is never confused with a
// later entity reusing the same slot. The zero value is never allocated and
// can be used to mean "no entity".
type Entity uint64

// NoEntity is the zero Entity.
const NoEntity Entity = 0

func makeEntity(index, gen uint32) Entity {
	return Entity(uint64(gen)<<32 | uint64(index))
}

// Index returns the slot index of the entity.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the generation of the entity slot.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

func (e Entity) String() string {
	if e == NoEntity {
		return "none"
	}
	return fmt.Sprintf("%dv%d", e.Index(), e.Generation())
}

type slot struct {
	gen        uint32
	alive      bool
	components map[ComponentID]any
}

// World stores entities, their components and global resources.
type World struct {
	registry  map[reflect.Type]ComponentID
	types     []reflect.Type
	slots     []slot
	free      []uint32
	alive     int
	resources map[ComponentID]any
}

// New creates an empty World.
func New() *World {
	return &World{
		registry:  make(map[reflect.Type]ComponentID),
		resources: make(map[ComponentID]any),
	}
}

// Register returns the ComponentID of t, registering the type if it was not
// known yet. Pointer types are registered under their element type.
func (w *World) Register(t reflect.Type) ComponentID {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if id, ok := w.registry[t]; ok {
		return id
	}
	id := ComponentID(len(w.types))
	w.registry[t] = id
	w.types = append(w.types, t)
	return id
}

// Register registers the component type T in w.
func Register[T any](w *World) ComponentID {
	return w.Register(reflect.TypeOf((*T)(nil)).Elem())
}

// ComponentID returns the identifier of a registered type.
func (w *World) ComponentID(t reflect.Type) (ComponentID, bool) {
	id, ok := w.registry[t]
	return id, ok
}

// TypeOf returns the Go type registered under id.
func (w *World) TypeOf(id ComponentID) (reflect.Type, bool) {
	if int(id) >= len(w.types) {
		return nil, false
	}
	return w.types[id], true
}

// Spawn creates an entity holding the given components.
func (w *World) Spawn(components ...any) Entity {
	var index uint32
	if n := len(w.free); n > 0 {
		index = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		index = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}
	s := &w.slots[index]
	s.gen++
	s.alive = true
	s.components = make(map[ComponentID]any, len(components))
	w.alive++

	e := makeEntity(index, s.gen)
	for _, c := range components {
		w.Insert(e, c)
	}
	return e
}

// Despawn destroys e and all of its components. It reports whether the
// entity existed.
func (w *World) Despawn(e Entity) bool {
	s := w.slot(e)
	if s == nil {
		return false
	}
	s.alive = false
	s.components = nil
	w.free = append(w.free, e.Index())
	w.alive--
	return true
}

// Contains reports whether e is alive.
func (w *World) Contains(e Entity) bool {
	return w.slot(e) != nil
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.alive }

func (w *World) slot(e Entity) *slot {
	if e == NoEntity {
		return nil
	}
	i := e.Index()
	if int(i) >= len(w.slots) {
		return nil
	}
	s := &w.slots[i]
	if !s.alive || s.gen != e.Generation() {
		return nil
	}
	return s
}

// Insert adds component c to e, replacing any previous value of the same
// type. The component may be passed by value or by pointer; it is always
// stored by pointer. Insert panics if e is not alive.
func (w *World) Insert(e Entity, c any) {
	s := w.slot(e)
	if s == nil {
		panic(fmt.Sprintf("ecs: insert on missing entity %s", e))
	}
	id, p := w.box(c)
	s.components[id] = p
}

// Remove deletes the component with the given id from e. It reports
// whether the component was present.
func (w *World) Remove(e Entity, id ComponentID) bool {
	s := w.slot(e)
	if s == nil {
		return false
	}
	if _, ok := s.components[id]; !ok {
		return false
	}
	delete(s.components, id)
	return true
}

// Has reports whether e is alive and holds a component with the given id.
func (w *World) Has(e Entity, id ComponentID) bool {
	s := w.slot(e)
	if s == nil {
		return false
	}
	_, ok := s.components[id]
	return ok
}

// Get returns a pointer to the component with the given id on e.
func (w *World) Get(e Entity, id ComponentID) (any, bool) {
	s := w.slot(e)
	if s == nil {
		return nil, false
	}
	p, ok := s.components[id]
	return p, ok
}

// InsertResource stores the global resource r, replacing any previous value
// of the same type.
func (w *World) InsertResource(r any) {
	id, p := w.box(r)
	w.resources[id] = p
}

// RemoveResource deletes the resource with the given id.
func (w *World) RemoveResource(id ComponentID) bool {
	if _, ok := w.resources[id]; !ok {
		return false
	}
	delete(w.resources, id)
	return true
}

// HasResource reports whether a resource with the given id is present.
func (w *World) HasResource(id ComponentID) bool {
	_, ok := w.resources[id]
	return ok
}

// Resource returns a pointer to the resource with the given id.
func (w *World) Resource(id ComponentID) (any, bool) {
	p, ok := w.resources[id]
	return p, ok
}

func (w *World) box(c any) (ComponentID, any) {
	if c == nil {
		panic("ecs: nil component")
	}
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			panic(fmt.Sprintf("ecs: nil %T component", c))
		}
		return w.Register(v.Type().Elem()), c
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return w.Register(v.Type()), p.Interface()
}
