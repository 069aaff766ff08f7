package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestQueue(maxRetries int) *RequestQueue {
	return NewRequestQueue(QueueOptions{
		Interval:   time.Millisecond,
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	})
}

func TestRequestQueue_Success(t *testing.T) {
	q := newTestQueue(3)
	defer q.Close()

	var ran atomic.Bool
	err := q.Do(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran.Load() {
		t.Error("call did not run")
	}
}

func TestRequestQueue_RateLimitRetried(t *testing.T) {
	q := newTestQueue(5)
	defer q.Close()

	var attempts atomic.Int32
	err := q.Do(context.Background(), func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return fmt.Errorf("%w: status 429", ErrRateLimited)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestRequestQueue_RateLimitBackoffGrows(t *testing.T) {
	q := NewRequestQueue(QueueOptions{
		Interval:   time.Millisecond,
		MaxRetries: 3,
		RetryDelay: 20 * time.Millisecond,
	})
	defer q.Close()

	var mu sync.Mutex
	var stamps []time.Time

	q.Do(context.Background(), func(ctx context.Context) error {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		if len(stamps) < 4 {
			return fmt.Errorf("%w: status 429", ErrRateLimited)
		}
		return nil
	})

	mu.Lock()
	defer mu.Unlock()
	if len(stamps) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(stamps))
	}

	// Delays follow delay*(attempt+1): each gap at least as long as
	// the previous one.
	var prev time.Duration
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < prev {
			t.Errorf("gap %d shrank: %s after %s", i, gap, prev)
		}
		prev = gap
	}
}

func TestRequestQueue_RateLimitExhausted(t *testing.T) {
	q := newTestQueue(2)
	defer q.Close()

	var attempts atomic.Int32
	err := q.Do(context.Background(), func(ctx context.Context) error {
		attempts.Add(1)
		return fmt.Errorf("%w: status 429", ErrRateLimited)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected wrapped ErrRateLimited, got %v", err)
	}
	// maxRetries retries on top of the initial attempt.
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestRequestQueue_TransientRetriedBounded(t *testing.T) {
	q := newTestQueue(3)
	defer q.Close()

	var attempts atomic.Int32
	err := q.Do(context.Background(), func(ctx context.Context) error {
		attempts.Add(1)
		return fmt.Errorf("%w: connection reset", ErrTransient)
	})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	// Initial attempt plus the fixed transient budget.
	if attempts.Load() != int32(transientRetries+1) {
		t.Errorf("expected %d attempts, got %d", transientRetries+1, attempts.Load())
	}
}

func TestRequestQueue_OtherErrorsNotRetried(t *testing.T) {
	q := newTestQueue(3)
	defer q.Close()

	sentinel := errors.New("bad request")
	var attempts atomic.Int32
	err := q.Do(context.Background(), func(ctx context.Context) error {
		attempts.Add(1)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel unmodified, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestRequestQueue_FIFO(t *testing.T) {
	q := newTestQueue(3)
	defer q.Close()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	// Occupy the worker so the remaining calls queue up in order.
	block := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Do(context.Background(), func(ctx context.Context) error {
			<-block
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	for i := 1; i <= 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Do(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Stagger enqueues so channel order matches submission order.
		time.Sleep(20 * time.Millisecond)
	}
	close(block)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i+1 {
			t.Fatalf("order violated: %v", order)
		}
	}
}

func TestRequestQueue_Close(t *testing.T) {
	q := newTestQueue(3)
	q.Close()

	err := q.Do(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// Closing twice is safe.
	q.Close()
}

func TestRequestQueue_ContextCancelledWhileQueued(t *testing.T) {
	q := newTestQueue(3)
	defer q.Close()

	block := make(chan struct{})
	go q.Do(context.Background(), func(ctx context.Context) error {
		<-block
		return nil
	})
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Do(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	close(block)
}
