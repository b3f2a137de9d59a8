package poolcounter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var (
	ErrQueueFull    = errors.New("poolcounter: queue full")
	ErrQueueTimeout = errors.New("poolcounter: timed out waiting for slot")
	ErrPoolBusy     = errors.New("poolcounter: slot busy and queueing disabled")
	ErrWorkPanicked = errors.New("poolcounter: work panicked")
)

// Config bounds the work admitted per key.
type Config struct {
	// Workers is the number of concurrent executions per key.
	Workers int
	// MaxQueued is the number of callers allowed to wait per key. Zero
	// rejects as soon as every worker slot is taken.
	MaxQueued int
	// Timeout bounds the wait for a slot. Zero waits until the caller's
	// context ends.
	Timeout time.Duration
}

// DefaultConfig serialises work per key with a queue of 50 and a 15s wait.
func DefaultConfig() Config {
	return Config{Workers: 1, MaxQueued: 50, Timeout: 15 * time.Second}
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// Pool admits work per key. Entries of the admission table live only while
// some caller holds or waits for the key.
type Pool struct {
	cfg    Config
	logger interfaces.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

var _ interfaces.WorkerPool = (*Pool)(nil)

// Option customises a Pool.
type Option func(*Pool)

func WithLogger(logger interfaces.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(cfg Config, opts ...Option) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxQueued < 0 {
		cfg.MaxQueued = 0
	}
	p := &Pool{
		cfg:    cfg,
		logger: logging.NoOp(),
		slots:  make(map[string]*slot),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

type outcome struct {
	out *interfaces.ParserOutput
	err error
}

// RunExclusive runs work once a slot for key is free. If ctx ends while
// waiting, work never starts. If ctx ends while work runs, work completes
// in the background and the caller gets the context error.
func (p *Pool) RunExclusive(ctx context.Context, key string, work interfaces.Work) (*interfaces.ParserOutput, error) {
	s, err := p.join(key)
	if err != nil {
		return nil, err
	}
	if err := p.acquire(ctx, key, s); err != nil {
		p.leave(key, s)
		return nil, err
	}

	done := make(chan outcome, 1)
	workCtx := context.WithoutCancel(ctx)
	go func() {
		defer p.leave(key, s)
		defer s.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrWorkPanicked, r)}
			}
		}()
		out, err := work(workCtx)
		done <- outcome{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-ctx.Done():
		p.logger.Debug("caller left while work was running", "key", key)
		return nil, ctx.Err()
	}
}

// Active reports how many keys currently have holders or waiters.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

func (p *Pool) join(key string) (*slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(int64(p.cfg.Workers))}
		p.slots[key] = s
	}
	if s.refs >= p.cfg.Workers+p.cfg.MaxQueued {
		p.logger.Warn("parse rejected, queue full", "key", key, "waiting", s.refs)
		return nil, apierrors.ConcurrencyLimit(key, ErrQueueFull)
	}
	s.refs++
	return s, nil
}

func (p *Pool) leave(key string, s *slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.refs--
	if s.refs <= 0 && p.slots[key] == s {
		delete(p.slots, key)
	}
}

func (p *Pool) acquire(ctx context.Context, key string, s *slot) error {
	if s.sem.TryAcquire(1) {
		return nil
	}
	if p.cfg.MaxQueued == 0 {
		p.logger.Warn("parse rejected, slot busy", "key", key)
		return apierrors.ConcurrencyLimit(key, ErrPoolBusy)
	}

	waitCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	if err := s.sem.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.logger.Warn("parse rejected, queue timeout", "key", key, "timeout", p.cfg.Timeout)
		return apierrors.ConcurrencyLimit(key, ErrQueueTimeout)
	}
	return nil
}

// Direct runs work inline without admission control. It backs deployments
// that disable the pool.
type Direct struct{}

var _ interfaces.WorkerPool = Direct{}

func (Direct) RunExclusive(ctx context.Context, _ string, work interfaces.Work) (out *interfaces.ParserOutput, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrWorkPanicked, r)
		}
	}()
	return work(ctx)
}
