// Package eventbus provides ordered publish/subscribe over a closed
// set of event kinds.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/whooooop/agent007/internal/observability"
)

// ErrUnknownEvent is returned when a kind outside the bus's closed set
// is used. This is a programming error and fails fast.
var ErrUnknownEvent = errors.New("unknown event kind")

// ErrBusClosed is returned for emits against a closed bus.
var ErrBusClosed = errors.New("event bus closed")

const queueCapacity = 256

// Kind names one event stream on the bus.
type Kind string

// Handler processes one emitted payload.
type Handler func(ctx context.Context, payload interface{}) error

// Bus serializes all emits through one internal FIFO drained by a
// single worker, so handler executions never interleave even when
// producers emit concurrently. Emit returns after every handler for
// that emit has run. Handler failures are logged and isolated
// per-handler: remaining handlers for the emit still run.
type Bus struct {
	logger *log.Logger

	mu       sync.RWMutex
	handlers map[Kind][]Handler

	queue     chan emitJob
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type emitJob struct {
	ctx      context.Context
	kind     Kind
	payload  interface{}
	finished chan struct{}
}

// New creates a bus over the given closed set of kinds and starts its
// worker.
func New(logger *log.Logger, kinds ...Kind) *Bus {
	if logger == nil {
		logger = log.Default()
	}

	handlers := make(map[Kind][]Handler, len(kinds))
	for _, k := range kinds {
		handlers[k] = nil
	}

	b := &Bus{
		logger:   logger,
		handlers: handlers,
		queue:    make(chan emitJob, queueCapacity),
		done:     make(chan struct{}),
	}

	b.wg.Add(1)
	go b.worker()

	return b
}

// On registers a handler for kind. Handlers fire in registration
// order.
func (b *Bus) On(kind Kind, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, kind)
	}
	b.handlers[kind] = append(b.handlers[kind], handler)
	return nil
}

// Emit queues the payload and blocks until every handler for this
// emit has run.
func (b *Bus) Emit(ctx context.Context, kind Kind, payload interface{}) error {
	b.mu.RLock()
	_, known := b.handlers[kind]
	b.mu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, kind)
	}

	job := emitJob{ctx: ctx, kind: kind, payload: payload, finished: make(chan struct{})}

	select {
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	case b.queue <- job:
		observability.SetEventBusDepth(len(b.queue))
	}

	select {
	case <-job.finished:
		return nil
	case <-b.done:
		return ErrBusClosed
	}
}

// Close stops the worker. Queued emits that never ran fail with
// ErrBusClosed.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case job := <-b.queue:
			observability.SetEventBusDepth(len(b.queue))
			b.dispatch(job)
			close(job.finished)
		}
	}
}

func (b *Bus) dispatch(job emitJob) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[job.kind]))
	copy(handlers, b.handlers[job.kind])
	b.mu.RUnlock()

	observability.RecordEventEmitted(string(job.kind))

	for i, handler := range handlers {
		if err := handler(job.ctx, job.payload); err != nil {
			observability.RecordHandlerError(string(job.kind))
			b.logger.Printf("event %s handler %d failed: %v", job.kind, i, err)
		}
	}
}
