package fiber

import "sync/atomic"

// WorldWindow exposes a World only while a coroutine is being resumed.
//
// Parameters capture the window of their coroutine at construction and go
// through it on every access; outside of Scope the window is closed and any
// access panics with ErrWindowClosed.
type WorldWindow struct {
	world atomic.Pointer[scopedWorld]
}

type scopedWorld struct{ w World }

// ClosedWindow returns a new window, closed.
func ClosedWindow() *WorldWindow { return new(WorldWindow) }

// Scope opens the window on w for the duration of body. The window is
// closed when Scope returns, including when body panics.
func (win *WorldWindow) Scope(w World, body func()) {
	if !win.world.CompareAndSwap(nil, &scopedWorld{w}) {
		panic(ErrWindowOpen)
	}
	defer win.world.Store(nil)
	body()
}

// World returns the world the window is open on.
func (win *WorldWindow) World() World {
	s := win.world.Load()
	if s == nil {
		panic(ErrWindowClosed)
	}
	return s.w
}

// IsOpen reports whether the window is open.
func (win *WorldWindow) IsOpen() bool { return win.world.Load() != nil }
