package solana

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/whooooop/agent007/internal/observability"
)

// ErrQueueClosed is returned to callers whose call never ran because
// the queue shut down.
var ErrQueueClosed = errors.New("request queue closed")

// Queue defaults sized for public RPC provider budgets.
const (
	DefaultPaceInterval = 5 * time.Second
	DefaultMaxRetries   = 50
	DefaultRetryDelay   = 5 * time.Second

	// Transient transport failures get a small fixed retry budget,
	// separate from the rate-limit backoff curve.
	transientRetries = 2
	transientDelay   = 500 * time.Millisecond

	queueCapacity = 1024
)

// QueueOptions configures a RequestQueue.
type QueueOptions struct {
	// Interval is the pacing delay between consecutive calls.
	Interval time.Duration
	// MaxRetries bounds rate-limit retries per call.
	MaxRetries int
	// RetryDelay is the base delay of the linear rate-limit backoff.
	RetryDelay time.Duration
	Logger     *log.Logger
}

// RequestQueue serializes outbound RPC calls through a single worker.
// One call is in flight at a time and a fixed pacing interval passes
// between calls, which bounds the outbound request rate regardless of
// how many callers enqueue concurrently. Rate-limited calls are
// retried in place with linearly growing delay, so one throttled
// caller delays everyone behind it. That is the accepted trade-off.
type RequestQueue struct {
	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *log.Logger

	calls     chan *queuedCall
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type queuedCall struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// NewRequestQueue creates a queue and starts its worker.
func NewRequestQueue(opts QueueOptions) *RequestQueue {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPaceInterval
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	q := &RequestQueue{
		interval:   opts.Interval,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
		calls:      make(chan *queuedCall, queueCapacity),
		done:       make(chan struct{}),
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Do enqueues fn and blocks until it has been executed by the worker,
// returning its final error. Rate-limit and transient failures are
// retried inside the queue; any other error is returned unmodified.
func (q *RequestQueue) Do(ctx context.Context, fn func(context.Context) error) error {
	qc := &queuedCall{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.calls <- qc:
		observability.SetRequestQueueDepth(len(q.calls))
	}

	select {
	case err := <-qc.result:
		return err
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		// The worker may still run the call; its result is buffered
		// so the worker never blocks on an abandoned caller.
		return ctx.Err()
	}
}

// Close stops the worker. Queued callers that never ran fail with
// ErrQueueClosed.
func (q *RequestQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}

func (q *RequestQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.done:
			return
		case qc := <-q.calls:
			observability.SetRequestQueueDepth(len(q.calls))
			qc.result <- q.execute(qc)

			// Pace before the next call.
			select {
			case <-q.done:
				return
			case <-time.After(q.interval):
			}
		}
	}
}

// execute runs one call with the retry policy: rate-limit signals are
// retried on a linear backoff up to maxRetries, transport failures get
// a small constant-delay budget, everything else propagates at once.
func (q *RequestQueue) execute(qc *queuedCall) error {
	transientLeft := transientRetries

	for attempt := 0; ; attempt++ {
		err := qc.fn(qc.ctx)
		if err == nil {
			return nil
		}

		switch {
		case IsRateLimited(err):
			if attempt >= q.maxRetries {
				return fmt.Errorf("rate limit retries exhausted after %d attempts: %w", attempt+1, err)
			}
			delay := q.retryDelay * time.Duration(attempt+1)
			q.logger.Printf("rate limited, retry %d/%d in %s", attempt+1, q.maxRetries, delay)
			observability.RecordRPCRetry("rate_limited")
			if err := q.sleep(qc.ctx, delay); err != nil {
				return err
			}
		case errors.Is(err, ErrTransient) && transientLeft > 0:
			transientLeft--
			observability.RecordRPCRetry("transient")
			if err := q.sleep(qc.ctx, transientDelay); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

func (q *RequestQueue) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case <-time.After(d):
		return nil
	}
}
