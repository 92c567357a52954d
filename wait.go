package fiber

import "time"

// NextTick suspends the coroutine until the next tick and returns the time
// elapsed during that tick.
func (f *Fib) NextTick() time.Duration {
	f.ctx.wait(WaitingReason{Kind: NextTick})
	return f.ctx.delta
}

// Duration suspends the coroutine until at least d has elapsed, counting
// the delta time of each tick. A duration shorter than a tick is not
// compensated: the coroutine always waits for at least one full tick.
func (f *Fib) Duration(d time.Duration) {
	for remaining := d; ; {
		f.ctx.wait(WaitingReason{Kind: Duration, Remaining: remaining})
		if remaining -= f.ctx.delta; remaining <= 0 {
			return
		}
	}
}

// Ticks suspends the coroutine for n ticks and returns the total time
// elapsed.
func (f *Fib) Ticks(n int) (elapsed time.Duration) {
	for i := 0; i < n; i++ {
		elapsed += f.NextTick()
	}
	return elapsed
}
