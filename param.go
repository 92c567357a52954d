package fiber

import (
	"fmt"
	"reflect"

	"github.com/stealthrocket/fiber/ecs"
)

//go:generate go run ./cmd/fibergen -n 8 -o params_generated.go

// Param is the constraint satisfied by coroutine function parameters.
//
// Parameters are constructed left to right when the coroutine is built.
// Init declares the access the parameter needs in access and returns false
// if it cannot be granted or if the data it refers to does not exist.
// IsValid is checked by drivers before every resume.
type Param[T any] interface {
	*T
	Init(ctx *ParamContext, w World, access *AccessSet) bool
	IsValid(ctx *ParamContext, w World) bool
}

type param interface {
	IsValid(ctx *ParamContext, w World) bool
}

// builder accumulates the parameters of a coroutine under construction.
type builder struct {
	ctx    *ParamContext
	world  World
	access AccessSet
	params []param
	failed bool
}

func inject[T any, P Param[T]](b *builder) P {
	if b.failed {
		return nil
	}
	p := P(new(T))
	if !p.Init(b.ctx, b.world, &b.access) {
		b.failed = true
		return nil
	}
	b.params = append(b.params, p)
	return p
}

// funcCoroutine is the UninitCoroutine returned by the FuncN adapters. It
// injects the parameters of the function in b and returns the entry point
// calling the function with them.
type funcCoroutine func(b *builder) func()

func (fn funcCoroutine) Init(owner ecs.Entity, w World) (Coroutine, bool) {
	co := new(FunctionCoroutine)
	co.ctx = &ParamContext{
		owner:  owner,
		signal: new(SignalChannel),
		window: ClosedWindow(),
		co:     co,
	}
	b := &builder{ctx: co.ctx, world: w}
	entry := fn(b)
	if b.failed {
		return nil, false
	}
	co.access = b.access
	co.params = b.params
	co.entry = entry
	return co, true
}

func componentID[T any](w World) (ecs.ComponentID, bool) {
	return w.ComponentID(reflect.TypeOf((*T)(nil)).Elem())
}

// Fib is the control parameter of a coroutine: it creates the waits and
// combinators the coroutine suspends on. It reserves no data.
type Fib struct {
	ctx *ParamContext
}

func (f *Fib) Init(ctx *ParamContext, _ World, _ *AccessSet) bool {
	f.ctx = ctx
	return true
}

func (f *Fib) IsValid(*ParamContext, World) bool { return true }

// Owner returns the entity owning the coroutine, if any.
func (f *Fib) Owner() (ecs.Entity, bool) { return f.ctx.Owner() }

// World returns the world the coroutine is being resumed against. The
// value must not be retained past the next suspension.
func (f *Fib) World() World { return f.ctx.window.World() }

// Owner is a parameter exposing the entity owning the coroutine. A
// coroutine with an Owner parameter cannot be built without an owner, and
// is cancelled once the owner is despawned.
type Owner struct {
	entity ecs.Entity
}

func (o *Owner) Init(ctx *ParamContext, w World, _ *AccessSet) bool {
	e, ok := ctx.Owner()
	if !ok || !w.Contains(e) {
		return false
	}
	o.entity = e
	return true
}

func (o *Owner) IsValid(_ *ParamContext, w World) bool { return w.Contains(o.entity) }

// Entity returns the owner.
func (o *Owner) Entity() ecs.Entity { return o.entity }

// component is the capability shared by Rd and Wr, resolved once when the
// coroutine is built.
type component[T any] struct {
	window *WorldWindow
	owner  ecs.Entity
	id     ecs.ComponentID
}

func (c *component[T]) init(ctx *ParamContext, w World, access *AccessSet, mode Mode) bool {
	id, ok := componentID[T](w)
	if !ok {
		return false
	}
	owner, ok := ctx.Owner()
	if !ok || !w.Has(owner, id) {
		return false
	}
	if mode == Write {
		ok = access.AddWrite(EntitySource(owner), id)
	} else {
		ok = access.AddRead(EntitySource(owner), id)
	}
	if !ok {
		return false
	}
	c.window, c.owner, c.id = ctx.window, owner, id
	return true
}

func (c *component[T]) valid(w World) bool { return w.Has(c.owner, c.id) }

func (c *component[T]) load() *T {
	p, ok := c.window.World().Get(c.owner, c.id)
	if !ok {
		panic(fmt.Errorf("%w: %s on entity %s", ErrMissingComponent, reflect.TypeOf((*T)(nil)).Elem(), c.owner))
	}
	return p.(*T)
}

// Rd is read access to the T component of the owning entity. The coroutine
// is cancelled once the owner no longer has the component.
type Rd[T any] struct{ c component[T] }

func (r *Rd[T]) Init(ctx *ParamContext, w World, access *AccessSet) bool {
	return r.c.init(ctx, w, access, Read)
}

func (r *Rd[T]) IsValid(_ *ParamContext, w World) bool { return r.c.valid(w) }

// Get returns the current value of the component.
func (r *Rd[T]) Get() T { return *r.c.load() }

// Wr is exclusive access to the T component of the owning entity. The
// coroutine is cancelled once the owner no longer has the component.
type Wr[T any] struct{ c component[T] }

func (r *Wr[T]) Init(ctx *ParamContext, w World, access *AccessSet) bool {
	return r.c.init(ctx, w, access, Write)
}

func (r *Wr[T]) IsValid(_ *ParamContext, w World) bool { return r.c.valid(w) }

// Get returns the current value of the component.
func (r *Wr[T]) Get() T { return *r.c.load() }

// Set replaces the value of the component.
func (r *Wr[T]) Set(v T) { *r.c.load() = v }

// Mut returns a pointer to the component. The pointer must not be retained
// past the next suspension.
func (r *Wr[T]) Mut() *T { return r.c.load() }

// resource is the capability shared by Res and ResMut.
type resource[T any] struct {
	window *WorldWindow
	id     ecs.ComponentID
}

func (r *resource[T]) init(ctx *ParamContext, w World, access *AccessSet, mode Mode) bool {
	id, ok := componentID[T](w)
	if !ok || !w.HasResource(id) {
		return false
	}
	if mode == Write {
		ok = access.AddWrite(Global(), id)
	} else {
		ok = access.AddRead(Global(), id)
	}
	if !ok {
		return false
	}
	r.window, r.id = ctx.window, id
	return true
}

func (r *resource[T]) load() *T {
	p, ok := r.window.World().Resource(r.id)
	if !ok {
		panic(fmt.Errorf("%w: resource %s", ErrMissingComponent, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return p.(*T)
}

// Res is read access to the global T resource.
type Res[T any] struct{ r resource[T] }

func (r *Res[T]) Init(ctx *ParamContext, w World, access *AccessSet) bool {
	return r.r.init(ctx, w, access, Read)
}

func (r *Res[T]) IsValid(_ *ParamContext, w World) bool { return w.HasResource(r.r.id) }

// Get returns the current value of the resource.
func (r *Res[T]) Get() T { return *r.r.load() }

// ResMut is exclusive access to the global T resource.
type ResMut[T any] struct{ r resource[T] }

func (r *ResMut[T]) Init(ctx *ParamContext, w World, access *AccessSet) bool {
	return r.r.init(ctx, w, access, Write)
}

func (r *ResMut[T]) IsValid(_ *ParamContext, w World) bool { return w.HasResource(r.r.id) }

// Get returns the current value of the resource.
func (r *ResMut[T]) Get() T { return *r.r.load() }

// Set replaces the value of the resource.
func (r *ResMut[T]) Set(v T) { *r.r.load() = v }

// Mut returns a pointer to the resource. The pointer must not be retained
// past the next suspension.
func (r *ResMut[T]) Mut() *T { return r.r.load() }
