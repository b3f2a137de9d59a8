package poolcounter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func refs(p *Pool, key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.slots[key]; ok {
		return s.refs
	}
	return 0
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func blockingWork(release <-chan struct{}) interfaces.Work {
	return func(context.Context) (*interfaces.ParserOutput, error) {
		<-release
		return &interfaces.ParserOutput{Text: "done"}, nil
	}
}

func TestSameKeyRunsSerially(t *testing.T) {
	const n = 8
	pool := New(Config{Workers: 1, MaxQueued: n, Timeout: 5 * time.Second})

	var inFlight, maxInFlight, counter int32
	work := func(context.Context) (*interfaces.ParserOutput, error) {
		now := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&maxInFlight)
			if now <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&counter, 1)
		atomic.AddInt32(&inFlight, -1)
		return &interfaces.ParserOutput{}, nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.RunExclusive(context.Background(), "wiki:ApiParser:a:127.0.0.1", work); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	if counter != n {
		t.Fatalf("expected %d executions, got %d", n, counter)
	}
	if maxInFlight != 1 {
		t.Fatalf("same key executions overlapped: max in flight %d", maxInFlight)
	}
	waitFor(t, func() bool { return pool.Active() == 0 })
}

func TestDistinctKeysOverlap(t *testing.T) {
	const n = 4
	pool := New(Config{Workers: 1, MaxQueued: 0})

	var arrived int32
	allArrived := make(chan struct{})
	work := func(context.Context) (*interfaces.ParserOutput, error) {
		if atomic.AddInt32(&arrived, 1) == n {
			close(allArrived)
		}
		select {
		case <-allArrived:
			return &interfaces.ParserOutput{}, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("keys were serialised")
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("wiki:ApiParser:u:%d", i+1)
			if _, err := pool.RunExclusive(context.Background(), key, work); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueFullRejectsImmediately(t *testing.T) {
	pool := New(Config{Workers: 1, MaxQueued: 1})
	key := "k"
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.RunExclusive(context.Background(), key, blockingWork(release))
		}()
	}
	waitFor(t, func() bool { return refs(pool, key) == 2 })

	_, err := pool.RunExclusive(context.Background(), key, blockingWork(release))
	if !errors.Is(err, apierrors.ErrConcurrencyLimitExceeded) || !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full rejection, got %v", err)
	}
	if !apierrors.IsRetryable(err) {
		t.Fatalf("concurrency rejections must be retryable")
	}

	close(release)
	wg.Wait()
	waitFor(t, func() bool { return pool.Active() == 0 })
}

func TestBusyWithoutQueueRejects(t *testing.T) {
	pool := New(Config{Workers: 1, MaxQueued: 0})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pool.RunExclusive(context.Background(), "k", blockingWork(release))
	}()
	waitFor(t, func() bool { return refs(pool, "k") == 1 })

	_, err := pool.RunExclusive(context.Background(), "k", blockingWork(release))
	if !errors.Is(err, ErrQueueFull) && !errors.Is(err, ErrPoolBusy) {
		t.Fatalf("expected busy rejection, got %v", err)
	}
	close(release)
	<-done
}

func TestQueueTimeout(t *testing.T) {
	pool := New(Config{Workers: 1, MaxQueued: 5, Timeout: 20 * time.Millisecond})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pool.RunExclusive(context.Background(), "k", blockingWork(release))
	}()
	waitFor(t, func() bool { return refs(pool, "k") == 1 })

	_, err := pool.RunExclusive(context.Background(), "k", blockingWork(release))
	if !errors.Is(err, ErrQueueTimeout) || apierrors.Code(err) != apierrors.CodeConcurrencyLimit {
		t.Fatalf("expected queue timeout, got %v", err)
	}
	close(release)
	<-done
	waitFor(t, func() bool { return pool.Active() == 0 })
}

func TestCancelWhileQueuedNeverStartsWork(t *testing.T) {
	pool := New(Config{Workers: 1, MaxQueued: 5})
	release := make(chan struct{})
	holderDone := make(chan struct{})
	go func() {
		defer close(holderDone)
		_, _ = pool.RunExclusive(context.Background(), "k", blockingWork(release))
	}()
	waitFor(t, func() bool { return refs(pool, "k") == 1 })

	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Bool
	errCh := make(chan error, 1)
	go func() {
		_, err := pool.RunExclusive(ctx, "k", func(context.Context) (*interfaces.ParserOutput, error) {
			started.Store(true)
			return nil, nil
		})
		errCh <- err
	}()
	waitFor(t, func() bool { return refs(pool, "k") == 2 })
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if refs(pool, "k") != 1 {
		t.Fatalf("cancelled waiter must leave the queue")
	}

	close(release)
	<-holderDone
	if started.Load() {
		t.Fatalf("work must not start after cancellation")
	}
	waitFor(t, func() bool { return pool.Active() == 0 })
}

func TestCancelWhileRunningLetsWorkFinish(t *testing.T) {
	pool := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	running := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := pool.RunExclusive(ctx, "k", func(workCtx context.Context) (*interfaces.ParserOutput, error) {
			close(running)
			<-release
			if workCtx.Err() != nil {
				t.Errorf("work context must not be cancelled with the caller")
			}
			close(finished)
			return &interfaces.ParserOutput{}, nil
		})
		errCh <- err
	}()

	<-running
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected caller cancellation, got %v", err)
	}
	if refs(pool, "k") != 1 {
		t.Fatalf("slot must stay held while work runs")
	}
	close(release)
	<-finished
	waitFor(t, func() bool { return pool.Active() == 0 })
}

func TestWorkErrorsAndPanicsReleaseSlot(t *testing.T) {
	pool := New(DefaultConfig())
	boom := errors.New("boom")

	_, err := pool.RunExclusive(context.Background(), "k", func(context.Context) (*interfaces.ParserOutput, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected work error, got %v", err)
	}

	_, err = pool.RunExclusive(context.Background(), "k", func(context.Context) (*interfaces.ParserOutput, error) {
		panic("kaboom")
	})
	if !errors.Is(err, ErrWorkPanicked) {
		t.Fatalf("expected panic error, got %v", err)
	}
	waitFor(t, func() bool { return pool.Active() == 0 })
}
