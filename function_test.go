package fiber

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stealthrocket/fiber/ecs"
)

type position struct{ X, Y float64 }

type health int

type score int

func newWorld(components ...any) (*ecs.World, ecs.Entity) {
	w := ecs.New()
	return w, w.Spawn(components...)
}

func build(t *testing.T, c UninitCoroutine, owner ecs.Entity, w World) *FunctionCoroutine {
	t.Helper()
	co, ok := Construct(c, owner, w)
	if !ok {
		t.Fatal("coroutine construction failed")
	}
	t.Cleanup(co.Cancel)
	return co.(*FunctionCoroutine)
}

func catch(f func()) (v any) {
	defer func() { v = recover() }()
	f()
	return nil
}

func TestFunctionCoroutineSteps(t *testing.T) {
	w, e := newWorld()

	var trace []string
	co := build(t, Func1(func(fib *Fib) {
		trace = append(trace, "start")
		fib.NextTick()
		trace = append(trace, "tick 1")
		fib.NextTick()
		trace = append(trace, "tick 2")
	}), e, w)

	for i, want := range []Result{
		{Reason: WaitingReason{Kind: NextTick}},
		{Reason: WaitingReason{Kind: NextTick}},
		{Done: true},
		{Done: true},
	} {
		got := co.Resume(w, time.Second)
		if got.Done != want.Done || got.Reason.Kind != want.Reason.Kind {
			t.Errorf("resume %d: want %+v, got %+v", i, want, got)
		}
	}

	if diff := cmp.Diff([]string{"start", "tick 1", "tick 2"}, trace); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
	if !co.Done() {
		t.Error("coroutine not done")
	}
}

func TestFunc0CompletesOnFirstResume(t *testing.T) {
	w, _ := newWorld()
	ran := false
	co := build(t, Func0(func() { ran = true }), ecs.NoEntity, w)

	if r := co.Resume(w, 0); !r.Done {
		t.Errorf("want done, got %+v", r)
	}
	if !ran {
		t.Error("function did not run")
	}
}

func TestNextTickReturnsDelta(t *testing.T) {
	w, _ := newWorld()

	var deltas []time.Duration
	co := build(t, Func1(func(fib *Fib) {
		deltas = append(deltas, fib.NextTick())
		deltas = append(deltas, fib.NextTick())
	}), ecs.NoEntity, w)

	co.Resume(w, 0)
	co.Resume(w, 16*time.Millisecond)
	co.Resume(w, 20*time.Millisecond)

	if diff := cmp.Diff([]time.Duration{16 * time.Millisecond, 20 * time.Millisecond}, deltas); diff != "" {
		t.Errorf("deltas (-want +got):\n%s", diff)
	}
}

func TestDuration(t *testing.T) {
	for _, test := range []struct {
		name     string
		duration time.Duration
		tick     time.Duration
		resumes  int
	}{
		{"one and a half ticks", 1500 * time.Millisecond, time.Second, 2},
		{"exactly two ticks", 2 * time.Second, time.Second, 2},
		{"shorter than a tick", 100 * time.Millisecond, time.Second, 1},
		{"zero", 0, time.Second, 1},
	} {
		t.Run(test.name, func(t *testing.T) {
			w, _ := newWorld()
			done := false
			co := build(t, Func1(func(fib *Fib) {
				fib.Duration(test.duration)
				done = true
			}), ecs.NoEntity, w)

			r := co.Resume(w, 0)
			if r.Done || r.Reason.Kind != Duration || r.Reason.Remaining != test.duration {
				t.Fatalf("first resume: want a %v duration wait, got %+v", test.duration, r)
			}

			resumes := 0
			for !done {
				if resumes++; resumes > 10 {
					t.Fatal("duration never resolved")
				}
				co.Resume(w, test.tick)
			}
			if resumes != test.resumes {
				t.Errorf("want %d resumes, got %d", test.resumes, resumes)
			}
		})
	}
}

func TestDurationReportsRemaining(t *testing.T) {
	w, _ := newWorld()
	co := build(t, Func1(func(fib *Fib) { fib.Duration(3 * time.Second) }), ecs.NoEntity, w)

	var remaining []time.Duration
	for r := co.Resume(w, 0); !r.Done; r = co.Resume(w, time.Second) {
		remaining = append(remaining, r.Reason.Remaining)
	}
	if diff := cmp.Diff([]time.Duration{3 * time.Second, 2 * time.Second, time.Second}, remaining); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
}

func TestTicks(t *testing.T) {
	w, _ := newWorld()
	var elapsed time.Duration
	co := build(t, Func1(func(fib *Fib) { elapsed = fib.Ticks(3) }), ecs.NoEntity, w)

	n := 0
	for r := co.Resume(w, 0); !r.Done; r = co.Resume(w, 10*time.Millisecond) {
		n++
	}
	if n != 3 || elapsed != 30*time.Millisecond {
		t.Errorf("want 3 suspensions and 30ms, got %d and %v", n, elapsed)
	}
}

func TestComponentParams(t *testing.T) {
	w, e := newWorld(position{X: 1}, health(10))

	co := build(t, Func3(func(fib *Fib, pos *Wr[position], hp *Rd[health]) {
		for hp.Get() > 0 {
			pos.Mut().X += fib.NextTick().Seconds()
		}
		pos.Set(position{X: -1, Y: -1})
	}), e, w)

	co.Resume(w, 0)
	co.Resume(w, time.Second)
	co.Resume(w, 2*time.Second)

	if p, _ := ecs.Get[position](w, e); p.X != 4 {
		t.Errorf("want X=4, got %+v", *p)
	}

	h, _ := ecs.Get[health](w, e)
	*h = 0
	if r := co.Resume(w, time.Second); !r.Done {
		t.Fatalf("want done, got %+v", r)
	}
	if p, _ := ecs.Get[position](w, e); *p != (position{X: -1, Y: -1}) {
		t.Errorf("final position not written: %+v", *p)
	}

	want := []Access{
		{Source: EntitySource(e), Component: mustID[position](w), Mode: Write},
		{Source: EntitySource(e), Component: mustID[health](w), Mode: Read},
	}
	got := co.Access().Entries()
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(DataSource{})); diff != "" {
		t.Errorf("access (-want +got):\n%s", diff)
	}
}

func TestResourceParams(t *testing.T) {
	w := ecs.New()
	w.InsertResource(score(1))
	w.InsertResource(health(5))

	co := build(t, Func3(func(fib *Fib, s *ResMut[score], h *Res[health]) {
		for i := 0; i < 2; i++ {
			s.Set(s.Get() + score(h.Get()))
			fib.NextTick()
		}
		*s.Mut() *= 2
	}), ecs.NoEntity, w)

	for r := co.Resume(w, 0); !r.Done; r = co.Resume(w, 0) {
	}
	if s, _ := ecs.GetResource[score](w); *s != 22 {
		t.Errorf("want score 22, got %d", *s)
	}

	for _, a := range co.Access().Entries() {
		if !a.Source.IsGlobal() {
			t.Errorf("resource access not global: %s", a)
		}
	}

	ecs.RemoveResource[health](w)
	if co.IsValid(w) {
		t.Error("coroutine still valid after its resource was removed")
	}
}

func TestConstructionRejected(t *testing.T) {
	w, e := newWorld(position{})
	ecs.Register[health](w)

	for _, test := range []struct {
		name  string
		c     UninitCoroutine
		owner ecs.Entity
	}{
		{"missing component", Func1(func(*Rd[health]) {}), e},
		{"unregistered type", Func1(func(*Rd[score]) {}), e},
		{"no owner", Func1(func(*Wr[position]) {}), ecs.NoEntity},
		{"dead owner", Func1(func(*Owner) {}), ecs.Entity(99)},
		{"read and write", Func2(func(*Rd[position], *Wr[position]) {}), e},
		{"two writes", Func3(func(*Fib, *Wr[position], *Wr[position]) {}), e},
		{"missing resource", Func1(func(*Res[health]) {}), e},
	} {
		t.Run(test.name, func(t *testing.T) {
			if co, ok := Construct(test.c, test.owner, w); ok || co != nil {
				t.Errorf("construction succeeded: %v", co)
			}
		})
	}

	if _, ok := Construct(Func2(func(*Rd[position], *Rd[position]) {}), e, w); !ok {
		t.Error("two reads of the same component must be allowed")
	}
}

func TestConstructionDoesNotRunFunction(t *testing.T) {
	w, e := newWorld(position{})
	ran := false
	co := build(t, Func1(func(*Rd[position]) { ran = true }), e, w)
	if ran || co.started {
		t.Error("function started before the first resume")
	}
}

func TestIsValid(t *testing.T) {
	w, e := newWorld(position{}, health(1))
	co := build(t, Func3(func(*Owner, *Rd[position], *Wr[health]) {}), e, w)

	if !co.IsValid(w) {
		t.Fatal("fresh coroutine is not valid")
	}
	ecs.Remove[health](w, e)
	if co.IsValid(w) {
		t.Error("coroutine valid after its component was removed")
	}
	w.Insert(e, health(2))
	if !co.IsValid(w) {
		t.Error("coroutine invalid after its component was restored")
	}
	w.Despawn(e)
	if co.IsValid(w) {
		t.Error("coroutine valid after its owner was despawned")
	}
}

func TestOwnerParam(t *testing.T) {
	w, e := newWorld()
	var got ecs.Entity
	co := build(t, Func2(func(fib *Fib, o *Owner) {
		got = o.Entity()
		if owner, ok := fib.Owner(); !ok || owner != got {
			panic("fib and owner disagree")
		}
	}), e, w)
	co.Resume(w, 0)
	if got != e {
		t.Errorf("want owner %s, got %s", e, got)
	}
}

func TestWindowIsScopedToResume(t *testing.T) {
	w, e := newWorld(position{X: 7})

	var leaked *Rd[position]
	var openDuringResume bool
	co := build(t, Func2(func(fib *Fib, pos *Rd[position]) {
		leaked = pos
		openDuringResume = fib.ctx.window.IsOpen() && fib.World() == World(w)
		fib.NextTick()
	}), e, w)

	if co.ctx.window.IsOpen() {
		t.Fatal("window open before resume")
	}
	co.Resume(w, 0)
	if !openDuringResume {
		t.Error("window was not open on the world during resume")
	}
	if co.ctx.window.IsOpen() {
		t.Error("window left open after resume")
	}

	v := catch(func() { leaked.Get() })
	if err, ok := v.(error); !ok || !errors.Is(err, ErrWindowClosed) {
		t.Errorf("want ErrWindowClosed panic, got %v", v)
	}
}

func TestWindowRejectsNestedScope(t *testing.T) {
	w, _ := newWorld()
	win := ClosedWindow()
	v := catch(func() {
		win.Scope(w, func() { win.Scope(w, func() {}) })
	})
	if v != ErrWindowOpen {
		t.Errorf("want ErrWindowOpen, got %v", v)
	}
	if win.IsOpen() {
		t.Error("window left open after panic")
	}
}

type rawSuspend struct{ ctx *ParamContext }

func (p *rawSuspend) Init(ctx *ParamContext, _ World, _ *AccessSet) bool {
	p.ctx = ctx
	return true
}

func (p *rawSuspend) IsValid(*ParamContext, World) bool { return true }

func TestProtocolViolation(t *testing.T) {
	w, _ := newWorld()
	co := build(t, Func1(func(p *rawSuspend) {
		p.ctx.Suspend()
	}), ecs.NoEntity, w)

	v := catch(func() { co.Resume(w, 0) })
	err, ok := v.(error)
	if !ok || !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("want ErrProtocolViolation panic, got %v", v)
	}
	if co.ctx.window.IsOpen() {
		t.Error("window left open after protocol violation")
	}
	if !co.Done() {
		t.Error("offending coroutine was not stopped")
	}
	if !co.Aborted() || co.IsValid(w) {
		t.Error("offending coroutine still looks like it can complete")
	}
}

func TestInvalidReasonIsProtocolViolation(t *testing.T) {
	w, _ := newWorld()
	co := build(t, Func1(func(p *rawSuspend) {
		p.ctx.Signal().Send(WaitingReason{Kind: Children})
		p.ctx.Suspend()
	}), ecs.NoEntity, w)

	v := catch(func() { co.Resume(w, 0) })
	if err, ok := v.(error); !ok || !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("want ErrProtocolViolation panic, got %v", v)
	}
}

func TestSuspendOutsideCoroutine(t *testing.T) {
	w, _ := newWorld()
	var p *rawSuspend
	co := build(t, Func1(func(r *rawSuspend) { p = r }), ecs.NoEntity, w)
	co.Resume(w, 0)

	if v := catch(p.ctx.Suspend); v == nil {
		t.Error("suspend from the driver goroutine did not panic")
	}
}

func TestPanicIsRaisedAfterWindowCloses(t *testing.T) {
	w, _ := newWorld()
	co := build(t, Func1(func(fib *Fib) {
		fib.NextTick()
		panic("boom")
	}), ecs.NoEntity, w)

	co.Resume(w, 0)
	if v := catch(func() { co.Resume(w, 0) }); v != "boom" {
		t.Errorf("want panic boom, got %v", v)
	}
	if co.ctx.window.IsOpen() {
		t.Error("window left open after panic")
	}
	if r := co.Resume(w, 0); !r.Done {
		t.Errorf("want done after panic, got %+v", r)
	}
	if co.IsValid(w) {
		t.Error("coroutine valid after panicking")
	}
}

func TestAborted(t *testing.T) {
	w, _ := newWorld()
	for _, test := range []struct {
		name    string
		drive   func(co *FunctionCoroutine)
		aborted bool
	}{
		{"returned", func(co *FunctionCoroutine) { co.Resume(w, 0); co.Resume(w, 0) }, false},
		{"returned then cancelled", func(co *FunctionCoroutine) { co.Resume(w, 0); co.Resume(w, 0); co.Cancel() }, false},
		{"cancelled while suspended", func(co *FunctionCoroutine) { co.Resume(w, 0); co.Cancel() }, true},
		{"cancelled before start", func(co *FunctionCoroutine) { co.Cancel() }, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			co := build(t, Func1(func(fib *Fib) { fib.NextTick() }), ecs.NoEntity, w)
			test.drive(co)
			if !co.Done() {
				t.Fatal("coroutine not done")
			}
			if co.Aborted() != test.aborted {
				t.Errorf("want aborted %v, got %v", test.aborted, co.Aborted())
			}
			if co.IsValid(w) == test.aborted {
				t.Errorf("want valid %v, got %v", !test.aborted, co.IsValid(w))
			}
		})
	}
}

func TestCancelUnwinds(t *testing.T) {
	w, _ := newWorld()
	var trace []string
	co := build(t, Func1(func(fib *Fib) {
		defer func() { trace = append(trace, "deferred") }()
		fib.NextTick()
		trace = append(trace, "resumed")
	}), ecs.NoEntity, w)

	co.Resume(w, 0)
	co.Cancel()
	co.Cancel()

	if diff := cmp.Diff([]string{"deferred"}, trace); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
	if r := co.Resume(w, 0); !r.Done {
		t.Errorf("want done after cancel, got %+v", r)
	}
}

func TestCancelBeforeStart(t *testing.T) {
	w, _ := newWorld()
	ran := false
	co := build(t, Func0(func() { ran = true }), ecs.NoEntity, w)
	co.Cancel()
	co.Resume(w, 0)
	if ran {
		t.Error("cancelled coroutine ran")
	}
}

func mustID[T any](w *ecs.World) ecs.ComponentID {
	return ecs.Register[T](w)
}
