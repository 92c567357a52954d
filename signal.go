package fiber

// SignalChannel is the single-slot handshake through which a coroutine
// body tells its driver why it suspended.
//
// The body sends exactly one reason per suspension; the driver receives it
// right after the resume call returns. Receiving clears the slot so a stale
// reason is never observed twice.
type SignalChannel struct {
	reason WaitingReason
	full   bool
}

// Send stores reason in the channel. It panics with ErrDoubleSignal if the
// previous reason was not received yet.
func (c *SignalChannel) Send(reason WaitingReason) {
	if c.full {
		panic(ErrDoubleSignal)
	}
	c.reason, c.full = reason, true
}

// Receive takes the reason out of the channel.
func (c *SignalChannel) Receive() (WaitingReason, bool) {
	reason, ok := c.reason, c.full
	c.reason, c.full = WaitingReason{}, false
	return reason, ok
}
