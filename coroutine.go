// Package fiber runs cooperative coroutines over an entity-component world.
//
// A coroutine is an ordinary Go function declaring, through its parameter
// types, which components it reads and writes:
//
//	fiber.Func2(func(fib *fiber.Fib, pos *fiber.Wr[Position]) {
//		for {
//			dt := fib.NextTick()
//			pos.Mut().X += dt.Seconds()
//		}
//	})
//
// The function suspends only through its Fib parameter (next tick, a
// duration, or a set of child coroutines), and may only touch the world
// while it is being resumed by a driver such as the executor package.
package fiber

import (
	"reflect"
	"time"

	"github.com/stealthrocket/fiber/ecs"
)

// World is the view of the entity-component store needed by coroutines.
// The ecs package provides an implementation.
type World interface {
	ComponentID(t reflect.Type) (ecs.ComponentID, bool)
	Contains(e ecs.Entity) bool
	Has(e ecs.Entity, id ecs.ComponentID) bool
	// Get returns a pointer to the component.
	Get(e ecs.Entity, id ecs.ComponentID) (any, bool)
	HasResource(id ecs.ComponentID) bool
	// Resource returns a pointer to the resource.
	Resource(id ecs.ComponentID) (any, bool)
}

var _ World = (*ecs.World)(nil)

// Coroutine is a resumable unit of work.
type Coroutine interface {
	// Access returns the data reserved by the coroutine. The set does not
	// change after construction.
	Access() *AccessSet

	// IsValid reports whether the coroutine can still run against w. A
	// driver must cancel a coroutine instead of resuming it once it is
	// invalid. A coroutine stopped before completing, by Cancel or by a
	// panic out of Resume, is invalid for good so that drivers never count
	// it as completed.
	IsValid(w World) bool

	// Resume runs the coroutine until its next suspension point or until
	// completion. dt is the time elapsed since the previous tick.
	Resume(w World, dt time.Duration) Result

	// Cancel stops the coroutine. It is safe to call at any time, including
	// after completion, and releases every resource held by the coroutine.
	Cancel()
}

// UninitCoroutine is a recipe for a coroutine, constructed against a world
// on behalf of an owner entity (ecs.NoEntity for none).
type UninitCoroutine interface {
	Init(owner ecs.Entity, w World) (Coroutine, bool)
}

// Construct builds c for owner. It returns false if a parameter of c could
// not be initialized; nothing is left behind in that case.
func Construct(c UninitCoroutine, owner ecs.Entity, w World) (Coroutine, bool) {
	return c.Init(owner, w)
}

// Result is the outcome of a call to Coroutine.Resume.
type Result struct {
	// Done is true once the coroutine completed.
	Done bool
	// Reason tells the driver when to resume the coroutine next. It is only
	// meaningful when Done is false.
	Reason WaitingReason
}

// Wait is the kind of a WaitingReason.
type Wait uint8

const (
	// NextTick resumes the coroutine on the next tick.
	NextTick Wait = iota + 1
	// Duration resumes the coroutine on the next tick; the coroutine
	// itself tracks the remaining time.
	Duration
	// Children resumes the coroutine once its children are done.
	Children
)

func (w Wait) String() string {
	switch w {
	case NextTick:
		return "next-tick"
	case Duration:
		return "duration"
	case Children:
		return "children"
	default:
		return "invalid"
	}
}

// ParMode selects how a coroutine waits on its children.
type ParMode uint8

const (
	// Race resolves once any child is done and drops the others.
	Race ParMode = iota + 1
	// Join resolves once every child is done.
	Join
)

func (m ParMode) String() string {
	switch m {
	case Race:
		return "race"
	case Join:
		return "join"
	default:
		return "invalid"
	}
}

// WaitingReason describes why a coroutine suspended. The zero value is not
// a valid reason.
type WaitingReason struct {
	Kind Wait

	// Remaining is the time left on a Duration wait.
	Remaining time.Duration

	// Children and Mode are set on a Children wait. Ownership of the
	// children moves to the driver, which must resume or cancel them.
	Children []Coroutine
	Mode     ParMode

	settle func(winner int)
}

// Valid reports whether r is one of the reasons understood by drivers.
func (r WaitingReason) Valid() bool {
	switch r.Kind {
	case NextTick, Duration:
		return true
	case Children:
		return r.Mode == Race || r.Mode == Join
	default:
		return false
	}
}

// Settle reports the outcome of a Children wait back to the coroutine that
// requested it. winner is the index of the first child, in addition order,
// that completed on the pass which resolved a race, or -1.
func (r WaitingReason) Settle(winner int) {
	if r.settle != nil {
		r.settle(winner)
	}
}
