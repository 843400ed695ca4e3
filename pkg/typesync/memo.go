package typesync

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// memoSource caches lookups for the lifetime of one Sync call. Concurrent
// callers for the same name share one request and at most limit requests
// run at once. Failed lookups are forgotten so a later caller retries.
//
// Requests run on the run context given to newMemoSource, not on the context
// of the caller that started them: a caller that stops waiting does not
// cancel a lookup other callers have joined.
type memoSource struct {
	run    context.Context
	src    Source
	sem    *semaphore.Weighted
	group  singleflight.Group
	logger *log.Logger

	mu      sync.Mutex
	results map[string]*PackageMetadata
}

func newMemoSource(run context.Context, src Source, limit int, logger *log.Logger) *memoSource {
	return &memoSource{
		run:     run,
		logger:  logger,
		src:     src,
		sem:     semaphore.NewWeighted(int64(max(limit, 1))),
		results: make(map[string]*PackageMetadata),
	}
}

// Fetch returns the stored result for name or performs the lookup.
// A nil result (package not found) is stored like any other success.
func (m *memoSource) Fetch(ctx context.Context, name string) (*PackageMetadata, error) {
	m.mu.Lock()
	meta, ok := m.results[name]
	m.mu.Unlock()
	if ok {
		return meta, nil
	}

	flight := m.group.DoChan(name, func() (any, error) {
		if err := m.sem.Acquire(m.run, 1); err != nil {
			return nil, err
		}
		defer m.sem.Release(1)

		meta, err := m.src.Fetch(m.run, name)
		if err != nil {
			if !stderrors.Is(err, context.Canceled) {
				m.logger.Debug("registry lookup failed", "package", name, "err", err)
			}
			return nil, err
		}
		m.mu.Lock()
		m.results[name] = meta
		m.mu.Unlock()
		return meta, nil
	})

	select {
	case r := <-flight:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*PackageMetadata), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
