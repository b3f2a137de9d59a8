package interfaces

import "context"

// Work produces parser output. It must be safe to run on any goroutine.
type Work func(ctx context.Context) (*ParserOutput, error)

// WorkerPool runs work under a key so that at most the configured number of
// executions per key overlap. Implementations return a concurrency-limit
// error when the key is saturated or the queue wait times out.
type WorkerPool interface {
	RunExclusive(ctx context.Context, key string, work Work) (*ParserOutput, error)
}
