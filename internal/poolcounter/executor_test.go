package poolcounter

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

func TestKeyByCallerClass(t *testing.T) {
	cases := []struct {
		caller interfaces.Caller
		want   string
	}{
		{interfaces.Caller{}, "enwiki:ApiParser:a:127.0.0.1"},
		{interfaces.Caller{Name: "10.0.0.5"}, "enwiki:ApiParser:a:10.0.0.5"},
		{interfaces.Caller{ID: 42, Name: "Alice"}, "enwiki:ApiParser:u:42"},
	}
	for _, tc := range cases {
		if got := Key("enwiki", tc.caller); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

type recordingPool struct {
	keys []string
	err  error
}

func (r *recordingPool) RunExclusive(ctx context.Context, key string, work interfaces.Work) (*interfaces.ParserOutput, error) {
	r.keys = append(r.keys, key)
	if r.err != nil {
		return nil, r.err
	}
	return work(ctx)
}

func TestExecutorUsesCallerKey(t *testing.T) {
	pool := &recordingPool{}
	exec := NewExecutor(pool, "wiki")
	out, err := exec.Execute(context.Background(), interfaces.Caller{ID: 7}, func(context.Context) (*interfaces.ParserOutput, error) {
		return &interfaces.ParserOutput{Text: "ok"}, nil
	})
	if err != nil || out.Text != "ok" {
		t.Fatalf("unexpected result %v %v", out, err)
	}
	if len(pool.keys) != 1 || pool.keys[0] != "wiki:ApiParser:u:7" {
		t.Fatalf("unexpected keys %v", pool.keys)
	}
}

func TestExecutorErrorMapping(t *testing.T) {
	limit := apierrors.ConcurrencyLimit("k", ErrQueueFull)
	exec := NewExecutor(&recordingPool{err: limit}, "wiki")
	_, err := exec.Execute(context.Background(), interfaces.Caller{}, nil)
	if !errors.Is(err, apierrors.ErrConcurrencyLimitExceeded) || errors.Is(err, apierrors.ErrParseFailed) {
		t.Fatalf("concurrency errors must pass through, got %v", err)
	}

	exec = NewExecutor(Direct{}, "wiki")
	_, err = exec.Execute(context.Background(), interfaces.Caller{}, func(context.Context) (*interfaces.ParserOutput, error) {
		return nil, errors.New("renderer exploded")
	})
	if !errors.Is(err, apierrors.ErrParseFailed) || apierrors.IsRetryable(err) {
		t.Fatalf("work failures must become parse failures, got %v", err)
	}

	_, err = exec.Execute(context.Background(), interfaces.Caller{}, func(context.Context) (*interfaces.ParserOutput, error) {
		return nil, apierrors.SectionNotFound("3", "page")
	})
	if !errors.Is(err, apierrors.ErrSectionNotFound) {
		t.Fatalf("api errors must pass through, got %v", err)
	}
}

func TestDirectHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := Direct{}.RunExclusive(ctx, "k", func(context.Context) (*interfaces.ParserOutput, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before work, got %v called=%v", err, called)
	}
}
