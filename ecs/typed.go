package ecs

import "reflect"

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Get returns a pointer to the T component of e.
func Get[T any](w *World, e Entity) (*T, bool) {
	id, ok := w.ComponentID(typeOf[T]())
	if !ok {
		return nil, false
	}
	p, ok := w.Get(e, id)
	if !ok {
		return nil, false
	}
	return p.(*T), true
}

// Remove deletes the T component of e.
func Remove[T any](w *World, e Entity) bool {
	id, ok := w.ComponentID(typeOf[T]())
	if !ok {
		return false
	}
	return w.Remove(e, id)
}

// GetResource returns a pointer to the global T resource.
func GetResource[T any](w *World) (*T, bool) {
	id, ok := w.ComponentID(typeOf[T]())
	if !ok {
		return nil, false
	}
	p, ok := w.Resource(id)
	if !ok {
		return nil, false
	}
	return p.(*T), true
}

// RemoveResource deletes the global T resource.
func RemoveResource[T any](w *World) bool {
	id, ok := w.ComponentID(typeOf[T]())
	if !ok {
		return false
	}
	return w.RemoveResource(id)
}
