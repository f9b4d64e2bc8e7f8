package service

import (
	"context"
	"sync"
	"time"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

// inFlightFetch tracks a single upstream fetch that multiple callers may wait for.
type inFlightFetch struct {
	mu      sync.Mutex
	result  models.EnvironmentalSnapshot
	err     error
	done    bool
	waiters []chan struct{}
}

// requestCoalescer serializes upstream fetches per coordinate key. Concurrent
// cache misses for the same key wait on the first fetch rather than each
// calling upstream, which also prevents lost cache updates from racing
// check-then-fetch-then-store sequences.
type requestCoalescer struct {
	mu       sync.Mutex
	inFlight map[string]*inFlightFetch
	timeout  time.Duration
}

// newRequestCoalescer creates a requestCoalescer with the specified wait timeout.
func newRequestCoalescer(timeout time.Duration) *requestCoalescer {
	return &requestCoalescer{
		inFlight: make(map[string]*inFlightFetch),
		timeout:  timeout,
	}
}

// GetOrDo checks if a fetch for key is already in-flight. If yes, waits for
// its result. If no, executes fn and registers the fetch. Respects context
// cancellation and the coalescer timeout to prevent indefinite blocking.
func (rc *requestCoalescer) GetOrDo(ctx context.Context, key string, fn func() (models.EnvironmentalSnapshot, error)) (models.EnvironmentalSnapshot, error) {
	rc.mu.Lock()
	req, exists := rc.inFlight[key]
	if exists {
		rc.mu.Unlock()
		return rc.wait(ctx, req)
	}

	req = &inFlightFetch{}
	rc.inFlight[key] = req
	rc.mu.Unlock()

	// The fetch runs detached so a caller whose context expires does not
	// cancel the result other waiters are blocked on.
	go func() {
		result, err := fn()

		req.mu.Lock()
		req.result = result
		req.err = err
		req.done = true
		waiters := req.waiters
		req.waiters = nil
		req.mu.Unlock()

		for _, notify := range waiters {
			close(notify)
		}

		rc.mu.Lock()
		delete(rc.inFlight, key)
		rc.mu.Unlock()
	}()

	return rc.wait(ctx, req)
}

// wait blocks until the in-flight fetch completes, the context is done, or
// the coalescer timeout elapses.
func (rc *requestCoalescer) wait(ctx context.Context, req *inFlightFetch) (models.EnvironmentalSnapshot, error) {
	req.mu.Lock()
	if req.done {
		result, err := req.result, req.err
		req.mu.Unlock()
		return result, err
	}
	notify := make(chan struct{})
	req.waiters = append(req.waiters, notify)
	req.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()
	select {
	case <-notify:
		req.mu.Lock()
		result, err := req.result, req.err
		req.mu.Unlock()
		return result, err
	case <-waitCtx.Done():
		return models.EnvironmentalSnapshot{}, waitCtx.Err()
	}
}
