package fiber

import (
	"fmt"
	"runtime"
	"time"

	"github.com/stealthrocket/fiber/ecs"
)

// FunctionCoroutine is the Coroutine built from a Go function by the FuncN
// adapters.
//
// The function runs on a goroutine of its own, but never concurrently with
// its driver: Resume hands control to the goroutine over an unbuffered
// channel and blocks until the function suspends or returns.
type FunctionCoroutine struct {
	ctx    *ParamContext
	access AccessSet
	params []param
	entry  func()

	next    chan struct{}
	started bool
	running bool
	stop    bool
	done    bool
	aborted bool
	failure *bodyPanic
}

type bodyPanic struct{ value any }

var _ Coroutine = (*FunctionCoroutine)(nil)

// Access returns the data reserved by the function parameters.
func (c *FunctionCoroutine) Access() *AccessSet { return &c.access }

// IsValid reports whether every parameter of the function is still valid.
// An aborted coroutine is never valid again.
func (c *FunctionCoroutine) IsValid(w World) bool {
	if c.aborted {
		return false
	}
	for _, p := range c.params {
		if !p.IsValid(c.ctx, w) {
			return false
		}
	}
	return true
}

// Done reports whether the function returned or was cancelled.
func (c *FunctionCoroutine) Done() bool { return c.done }

// Aborted reports whether the function was stopped before returning: it
// was cancelled, it panicked, or it broke the suspension protocol.
func (c *FunctionCoroutine) Aborted() bool { return c.aborted }

// Resume runs the function until its next suspension point, with the world
// window open on w for exactly that span.
//
// A panic raised by the function is re-raised by Resume once the window is
// closed. Resume also panics, with ErrProtocolViolation, if the function
// suspended without reporting a valid WaitingReason.
func (c *FunctionCoroutine) Resume(w World, dt time.Duration) Result {
	if c.done {
		return Result{Done: true}
	}
	c.ctx.delta = dt
	c.ctx.window.Scope(w, c.step)

	if f := c.failure; f != nil {
		c.failure = nil
		c.aborted = true
		panic(f.value)
	}
	if c.done {
		return Result{Done: true}
	}

	reason, ok := c.ctx.signal.Receive()
	if !ok || !reason.Valid() {
		c.Cancel()
		panic(fmt.Errorf("%w (owner %s): %s", ErrProtocolViolation, c.ctx.owner, wrongAwait))
	}
	return Result{Reason: reason}
}

// Cancel stops the function. If it was suspended, its stack is unwound and
// deferred calls run with the world window closed.
func (c *FunctionCoroutine) Cancel() {
	if c.done {
		return
	}
	c.aborted = true
	c.stop = true
	if c.started {
		c.step()
	}
	c.done = true
	c.failure = nil
	c.ctx.signal.Receive()

	// children built but never awaited
	for p := range c.ctx.groups {
		p.cancel()
	}
}

func (c *FunctionCoroutine) step() {
	if !c.started {
		c.started = true
		c.next = make(chan struct{})
		go c.run()
	}
	c.running = true
	c.next <- struct{}{}
	_, ok := <-c.next
	c.running = false
	if !ok {
		c.done = true
	}
}

func (c *FunctionCoroutine) run() {
	defer close(c.next)
	defer func() {
		// runtime.Goexit unwinds without a panic value, so only genuine
		// panics of the function are recorded here.
		if v := recover(); v != nil {
			c.failure = &bodyPanic{value: v}
		}
	}()

	<-c.next
	if !c.stop {
		c.entry()
	}
}

func (c *FunctionCoroutine) suspend() {
	if !c.running {
		panic("fiber: suspend called outside of the coroutine it belongs to")
	}
	if c.stop {
		panic("fiber: cannot suspend a coroutine that has been cancelled")
	}
	c.next <- struct{}{}
	<-c.next
	if c.stop {
		runtime.Goexit()
	}
}

// ParamContext is shared by the parameters of one coroutine. It gives them
// the owning entity, the signal channel, and the world window, and lets
// custom wait primitives suspend the coroutine.
type ParamContext struct {
	owner  ecs.Entity
	signal *SignalChannel
	window *WorldWindow
	co     *FunctionCoroutine
	delta  time.Duration
	groups map[*par]struct{}
}

// Owner returns the entity owning the coroutine, if any.
func (ctx *ParamContext) Owner() (ecs.Entity, bool) {
	return ctx.owner, ctx.owner != ecs.NoEntity
}

// Signal returns the channel on which the coroutine reports why it
// suspends.
func (ctx *ParamContext) Signal() *SignalChannel { return ctx.signal }

// Window returns the world window of the coroutine.
func (ctx *ParamContext) Window() *WorldWindow { return ctx.window }

// Delta returns the time elapsed since the previous tick, as given to the
// current resume call.
func (ctx *ParamContext) Delta() time.Duration { return ctx.delta }

// Suspend hands control back to the driver until the next resume. A reason
// must be sent on the signal channel first; suspending without one is a
// protocol violation which the driver turns into a panic.
//
// Suspend must be called from the coroutine function itself.
func (ctx *ParamContext) Suspend() { ctx.co.suspend() }

// wait reports reason and suspends until the driver resumes the coroutine.
func (ctx *ParamContext) wait(reason WaitingReason) {
	ctx.signal.Send(reason)
	ctx.Suspend()
}

func (ctx *ParamContext) track(p *par) {
	if ctx.groups == nil {
		ctx.groups = make(map[*par]struct{})
	}
	ctx.groups[p] = struct{}{}
}

func (ctx *ParamContext) untrack(p *par) { delete(ctx.groups, p) }

// construct builds a child coroutine for the same owner against the world
// the window is currently open on, and reserves its access in access. A
// child that cannot be built or that conflicts is cancelled and dropped.
func (ctx *ParamContext) construct(c UninitCoroutine, access *AccessSet) (Coroutine, bool) {
	child, ok := c.Init(ctx.owner, ctx.window.World())
	if !ok {
		return nil, false
	}
	if !access.Merge(child.Access()) {
		child.Cancel()
		return nil, false
	}
	return child, true
}
