package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jeffijoe/typesync/pkg/observability"
)

// runStats counts registry traffic for one run and logs every event at
// debug level.
type runStats struct {
	logger    *log.Logger
	requests  atomic.Int64
	failures  atomic.Int64
	cacheHits atomic.Int64
	manifests atomic.Int64
}

func newRunStats(logger *log.Logger) *runStats {
	return &runStats{logger: logger}
}

// register installs s as the sync, cache and HTTP hooks. The returned
// function restores the defaults.
func (s *runStats) register() func() {
	observability.SetSyncHooks(s)
	observability.SetCacheHooks(s)
	observability.SetHTTPHooks(s)
	return observability.Reset
}

func (s *runStats) summary() string {
	return fmt.Sprintf("synced %d manifests, %d registry requests (%d failed), %d cache hits",
		s.manifests.Load(), s.requests.Load(), s.failures.Load(), s.cacheHits.Load())
}

func (s *runStats) OnManifestSynced(_ context.Context, path string, added int, d time.Duration, err error) {
	if err != nil {
		return
	}
	s.manifests.Add(1)
	s.logger.Debug("manifest synced", "path", path, "added", added, "took", d.Round(time.Millisecond))
}

func (s *runStats) OnCacheHit(_ context.Context, key string) {
	s.cacheHits.Add(1)
	s.logger.Debug("cache hit", "key", key)
}

func (s *runStats) OnCacheMiss(context.Context, string) {}

func (s *runStats) OnCacheSet(_ context.Context, key string, size int) {
	s.logger.Debug("cached response", "key", key, "bytes", size)
}

func (s *runStats) OnRequest(context.Context, string, string, string) {
	s.requests.Add(1)
}

func (s *runStats) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	if status >= 400 && status != 404 {
		s.failures.Add(1)
	}
	s.logger.Debug("registry response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

// OnError counts transport failures. Requests cut short by cancellation are
// abandoned lookups, not registry failures.
func (s *runStats) OnError(_ context.Context, method, host, path string, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("registry request cancelled", "method", method, "host", host, "path", path)
		return
	}
	s.failures.Add(1)
	s.logger.Debug("registry request failed", "method", method, "host", host, "path", path, "err", err)
}
