package poolcounter

import (
	"context"
	"errors"
	"strconv"

	"github.com/goliatone/go-wikiparse/internal/apierrors"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// PoolName is the logical pool shared by every parse request.
const PoolName = "ApiParser"

// Key scopes concurrency to the caller: anonymous callers by display name,
// registered ones by id.
func Key(domain string, caller interfaces.Caller) string {
	class := "a:" + caller.DisplayName()
	if caller.IsRegistered() {
		class = "u:" + strconv.FormatInt(caller.ID, 10)
	}
	return domain + ":" + PoolName + ":" + class
}

// Executor runs parses through a WorkerPool under the caller's key and
// normalises the failures into the api error taxonomy.
type Executor struct {
	pool   interfaces.WorkerPool
	domain string
	logger interfaces.Logger
}

// ExecutorOption customises an Executor.
type ExecutorOption func(*Executor)

func WithExecutorLogger(logger interfaces.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewExecutor(pool interfaces.WorkerPool, domain string, opts ...ExecutorOption) *Executor {
	if pool == nil {
		pool = Direct{}
	}
	e := &Executor{pool: pool, domain: domain, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Key returns the pool key for caller on this executor's domain.
func (e *Executor) Key(caller interfaces.Caller) string {
	return Key(e.domain, caller)
}

// Execute runs work for caller. Concurrency rejections and context errors are
// returned as is; other failures become parse failures unless work already
// returned an api error.
func (e *Executor) Execute(ctx context.Context, caller interfaces.Caller, work interfaces.Work) (*interfaces.ParserOutput, error) {
	key := e.Key(caller)
	out, err := e.pool.RunExclusive(ctx, key, work)
	if err == nil {
		return out, nil
	}
	logger := logging.FromContext(ctx, e.logger)
	switch {
	case errors.Is(err, apierrors.ErrConcurrencyLimitExceeded):
		return nil, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("parse abandoned by caller", "key", key, "error", err)
		return nil, err
	}
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) {
		return nil, err
	}
	logger.Error("parse failed", "key", key, "error", err)
	return nil, apierrors.ParseFailed(err)
}
