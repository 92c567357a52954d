// Package executor drives fiber coroutines tick by tick.
//
// An Executor keeps a registry of coroutine trees: the coroutines spawned
// on it and the children they wait on. Each call to Tick resumes the
// coroutines that are due, never running two coroutines whose access to
// the world conflicts within the same tick.
//
// An Executor is not safe for concurrent use; it is meant to be owned by
// the goroutine ticking its world.
package executor

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/stealthrocket/fiber"
	"github.com/stealthrocket/fiber/ecs"
)

// ID identifies a coroutine spawned on an Executor.
type ID uint64

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used to report coroutine lifecycle events at
// debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// Executor owns and resumes coroutines.
type Executor struct {
	log    zerolog.Logger
	nextID ID
	roots  []*node
	ticks  uint64
}

// New creates an Executor.
func New(options ...Option) *Executor {
	e := &Executor{log: zerolog.Nop()}
	for _, option := range options {
		option(e)
	}
	return e
}

// Spawn builds c on behalf of owner and registers it. The coroutine first
// runs on the next call to Tick. Spawn returns false, and registers
// nothing, if c could not be built.
func (e *Executor) Spawn(w fiber.World, owner ecs.Entity, c fiber.UninitCoroutine) (ID, bool) {
	co, ok := fiber.Construct(c, owner, w)
	if !ok {
		e.log.Debug().Stringer("owner", owner).Msg("coroutine rejected at construction")
		return 0, false
	}
	e.nextID++
	n := &node{id: e.nextID, owner: owner, co: co}
	e.roots = append(e.roots, n)
	e.log.Debug().Uint64("id", uint64(n.id)).Stringer("owner", owner).Stringer("access", co.Access()).Msg("coroutine spawned")
	return n.id, true
}

// SpawnGlobal builds and registers c without an owner entity.
func (e *Executor) SpawnGlobal(w fiber.World, c fiber.UninitCoroutine) (ID, bool) {
	return e.Spawn(w, ecs.NoEntity, c)
}

// Cancel stops the coroutine with the given id, and all of its children.
// It reports whether the coroutine was registered.
func (e *Executor) Cancel(id ID) bool {
	for i, n := range e.roots {
		if n.id == id {
			n.cancel()
			e.roots = append(e.roots[:i], e.roots[i+1:]...)
			e.log.Debug().Uint64("id", uint64(id)).Msg("coroutine cancelled")
			return true
		}
	}
	return false
}

// CancelAll stops every registered coroutine.
func (e *Executor) CancelAll() {
	for _, n := range e.roots {
		n.cancel()
	}
	e.roots = nil
}

// Len returns the number of registered coroutines, children excluded.
func (e *Executor) Len() int { return len(e.roots) }

// Contains reports whether the coroutine with the given id is registered.
func (e *Executor) Contains(id ID) bool {
	for _, n := range e.roots {
		if n.id == id {
			return true
		}
	}
	return false
}

// Tick resumes every coroutine that is due against w. dt is the time
// elapsed since the previous tick.
//
// A coroutine which is no longer valid is cancelled and removed. A
// coroutine whose access conflicts with one already resumed during this
// tick is deferred; deferred coroutines are considered first on the next
// tick, then the others in spawn order, so conflicting coroutines take
// turns. Time spent deferred is added to the delta time given to the
// coroutine once it runs again.
//
// Panics raised by coroutines propagate to the caller; the registry stays
// consistent when they do.
func (e *Executor) Tick(w fiber.World, dt time.Duration) {
	e.ticks++
	defer e.sweep()

	var claimed fiber.AccessSet
	for _, deferred := range [2]bool{true, false} {
		for _, n := range e.roots {
			if n.visited == e.ticks || n.deferred != deferred {
				continue
			}
			n.visited = e.ticks
			e.tick(n, w, dt, &claimed)
		}
	}
}

func (e *Executor) tick(n *node, w fiber.World, dt time.Duration, claimed *fiber.AccessSet) {
	if !n.co.IsValid(w) {
		e.log.Debug().Uint64("id", uint64(n.id)).Stringer("owner", n.owner).Msg("coroutine invalid, cancelling")
		n.cancel()
		n.gone = true
		return
	}

	access := n.access()
	if claimed.Conflicts(access) {
		e.log.Debug().Uint64("id", uint64(n.id)).Stringer("access", access).Msg("coroutine deferred by an access conflict")
		n.deferred = true
		n.elapsed += dt
		return
	}
	n.deferred = false
	p := &pass{world: w, dt: dt + n.elapsed, root: n, others: claimed}
	n.elapsed = 0

	// The tree may have grown children during the pass; later roots must
	// see their access too. A root whose new children were held back gets
	// first pick on the next tick.
	defer func() {
		claimed.Union(n.access())
		n.deferred = p.held
	}()

	if e.drive(n, p) {
		e.log.Debug().Uint64("id", uint64(n.id)).Msg("coroutine done")
		n.gone = true
	}
}

func (e *Executor) sweep() {
	kept := e.roots[:0]
	for _, n := range e.roots {
		if !n.gone {
			kept = append(kept, n)
		}
	}
	clear(e.roots[len(kept):])
	e.roots = kept
}

// Ticks returns the number of calls made to Tick.
func (e *Executor) Ticks() uint64 { return e.ticks }
