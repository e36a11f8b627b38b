package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	counter *int64
	fail    bool
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	if j.fail {
		return &countingResult{err: fmt.Errorf("job failed")}
	}
	return &countingResult{}
}

// waitWithGuard fails the test instead of hanging it if the pool wedges
func waitWithGuard(t *testing.T, pool *Pool) []Result {
	t.Helper()

	done := make(chan []Result, 1)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		return results
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not complete in time")
		return nil
	}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	pool := NewPool(4)
	pool.Start()

	var counter int64
	const jobs = 20
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(&countingJob{counter: &counter})
		}
		pool.Done()
	}()

	results := waitWithGuard(t, pool)

	if atomic.LoadInt64(&counter) != jobs {
		t.Errorf("Expected %d executions, got %d", jobs, counter)
	}
	if len(results) != jobs {
		t.Errorf("Expected %d results, got %d", jobs, len(results))
	}
}

func TestPool_BatchExceedingChannelBuffers(t *testing.T) {
	// Both channels are buffered at workers*2; a batch far beyond that
	// combined capacity must still complete because collection drains
	// results while submission is still in flight.
	pool := NewPool(2)
	pool.Start()

	var counter int64
	const jobs = 100
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(&countingJob{counter: &counter})
		}
		pool.Done()
	}()

	results := waitWithGuard(t, pool)

	if len(results) != jobs {
		t.Errorf("Expected %d results, got %d", jobs, len(results))
	}
	if atomic.LoadInt64(&counter) != jobs {
		t.Errorf("Expected %d executions, got %d", jobs, counter)
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var counter int64
	pool.Submit(&countingJob{counter: &counter, fail: true})
	pool.Submit(&countingJob{counter: &counter})
	pool.Done()

	results := waitWithGuard(t, pool)

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Expected 1 failed result, got %d", failures)
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	var counter int64
	pool.Submit(&countingJob{counter: &counter})
	pool.Done()

	results := waitWithGuard(t, pool)
	if len(results) != 1 {
		t.Errorf("Expected 1 result from clamped pool, got %d", len(results))
	}
}

func TestPool_DoneIsIdempotent(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	var counter int64
	pool.Submit(&countingJob{counter: &counter})
	pool.Done()
	pool.Done()

	results := waitWithGuard(t, pool)
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submitting after shutdown must not block or panic
	var counter int64
	pool.Submit(&countingJob{counter: &counter})
}
