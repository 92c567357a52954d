// Package loop ticks one or more worlds at a fixed interval.
//
// Each Shard pairs a world with the executor driving its coroutines. Shards
// share nothing and run on their own goroutine; everything touching a
// shard's world, its Update hook included, happens on that goroutine.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stealthrocket/fiber"
	"github.com/stealthrocket/fiber/executor"
	"golang.org/x/sync/errgroup"
)

// Shard is a world and the executor resuming coroutines against it.
type Shard struct {
	Name     string
	World    fiber.World
	Executor *executor.Executor

	// Update, if set, is called on every tick before coroutines resume.
	Update func(dt time.Duration)
}

// ErrNoShards is returned by Run when it is given nothing to tick.
var ErrNoShards = errors.New("loop: no shards")

// PanicError reports a panic raised while ticking a shard.
type PanicError struct {
	Shard string
	Tick  uint64
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("loop: shard %q panicked on tick %d: %v", e.Shard, e.Tick, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Option configures Run.
type Option func(*config)

type config struct {
	clock        clock.Clock
	log          zerolog.Logger
	interval     time.Duration
	maxTicks     uint64
	stopWhenIdle bool
}

// WithClock sets the clock driving the tickers. It defaults to the wall
// clock.
func WithClock(c clock.Clock) Option { return func(cfg *config) { cfg.clock = c } }

// WithLogger sets the logger for shard lifecycle events.
func WithLogger(log zerolog.Logger) Option { return func(cfg *config) { cfg.log = log } }

// WithInterval sets the time between two ticks. It defaults to 1/60s.
func WithInterval(d time.Duration) Option { return func(cfg *config) { cfg.interval = d } }

// WithMaxTicks stops each shard after n ticks. Zero means no limit.
func WithMaxTicks(n uint64) Option { return func(cfg *config) { cfg.maxTicks = n } }

// WithStopWhenIdle stops a shard once its executor has no coroutine left.
func WithStopWhenIdle() Option { return func(cfg *config) { cfg.stopWhenIdle = true } }

// Run ticks every shard until ctx is done or each shard has stopped on its
// own. The first error, a panic or the context error, cancels the other
// shards and is returned. Coroutines still registered when a shard stops
// are left to the caller.
func Run(ctx context.Context, shards []Shard, options ...Option) error {
	if len(shards) == 0 {
		return ErrNoShards
	}
	cfg := config{
		clock:    clock.New(),
		log:      zerolog.Nop(),
		interval: time.Second / 60,
	}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.interval <= 0 {
		return fmt.Errorf("loop: invalid interval %s", cfg.interval)
	}

	group, ctx := errgroup.WithContext(ctx)
	for i := range shards {
		s := &shards[i]
		group.Go(func() error { return cfg.run(ctx, s) })
	}
	return group.Wait()
}

func (cfg *config) run(ctx context.Context, s *Shard) error {
	log := cfg.log.With().Str("shard", s.Name).Logger()
	log.Info().Dur("interval", cfg.interval).Msg("shard started")

	ticker := cfg.clock.Ticker(cfg.interval)
	defer ticker.Stop()

	last := cfg.clock.Now()
	for n := uint64(1); ; n++ {
		if cfg.maxTicks > 0 && n > cfg.maxTicks {
			log.Info().Uint64("ticks", n-1).Msg("shard reached its tick limit")
			return nil
		}
		if cfg.stopWhenIdle && s.Executor.Len() == 0 {
			log.Info().Uint64("ticks", n-1).Msg("shard idle")
			return nil
		}

		select {
		case <-ctx.Done():
			log.Info().Uint64("ticks", n-1).Msg("shard stopped")
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := tick(s, n, dt); err != nil {
				log.Error().Err(err).Msg("shard failed")
				return err
			}
			log.Trace().Uint64("tick", n).Dur("dt", dt).Int("coroutines", s.Executor.Len()).Send()
		}
	}
}

func tick(s *Shard, n uint64, dt time.Duration) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Shard: s.Name, Tick: n, Value: v}
		}
	}()
	if s.Update != nil {
		s.Update(dt)
	}
	s.Executor.Tick(s.World, dt)
	return nil
}
