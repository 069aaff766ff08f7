// Package scheduler provides overlap-safe periodic execution.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Loop runs a handler on a fixed interval from a single goroutine. A
// tick or trigger that arrives while the handler is running is
// dropped, never queued, so at most one run is in flight. Stop
// prevents future ticks without interrupting an in-flight run.
type Loop struct {
	interval time.Duration
	handler  func(context.Context)

	trigger  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLoop creates a loop. Start must be called to begin ticking.
func NewLoop(interval time.Duration, handler func(context.Context)) *Loop {
	return &Loop{
		interval: interval,
		handler:  handler,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the loop goroutine. Cancelling ctx stops future
// ticks like Stop does.
func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.run(ctx)
}

// Trigger requests an immediate out-of-band tick. Triggers arriving
// while the handler is running fall under the same overlap guard and
// are dropped.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Stop prevents future ticks and waits for an in-flight run to
// finish.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.C:
		case <-l.trigger:
		}

		l.handler(ctx)

		// Drop anything that fired while the handler was running;
		// those ticks are skipped, not queued.
		select {
		case <-ticker.C:
		default:
		}
		select {
		case <-l.trigger:
		default:
		}
	}
}
