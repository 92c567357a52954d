package fiber

import "errors"

var (
	// ErrWindowClosed is raised when the world is accessed while no resume
	// call is in progress.
	ErrWindowClosed = errors.New("fiber: world accessed outside of a coroutine resume")

	// ErrWindowOpen is raised when a world window is opened twice.
	ErrWindowOpen = errors.New("fiber: world window is already open")

	// ErrProtocolViolation is raised when a coroutine suspends without
	// reporting a valid waiting reason.
	ErrProtocolViolation = errors.New("fiber: coroutine suspended without a waiting reason")

	// ErrDoubleSignal is raised when a second waiting reason is sent before
	// the driver received the first one.
	ErrDoubleSignal = errors.New("fiber: waiting reason sent twice in one suspension")

	// ErrMissingComponent is raised when a parameter's data disappeared
	// while the coroutine was running.
	ErrMissingComponent = errors.New("fiber: component is missing")
)

const wrongAwait = `a coroutine yielded without notifying the executor of the
reason; it most likely waits on something which is not part of this package`
