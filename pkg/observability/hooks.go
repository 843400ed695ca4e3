// Package observability provides hooks for metrics and logging.
//
// Libraries call the registered hooks at interesting points (a manifest was
// synced, a registry response came from cache, an HTTP request finished).
// Nothing is recorded by default; the application registers implementations
// at startup:
//
//	observability.SetHTTPHooks(myHTTPHooks)
//	defer observability.Reset()
//
// Libraries emit events through the getters:
//
//	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sync Hooks
// =============================================================================

// SyncHooks receives events from the sync engine.
type SyncHooks interface {
	// OnManifestSynced records one processed manifest and how many typings
	// were added to it.
	OnManifestSynced(ctx context.Context, path string, added int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cached registry lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response at all).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopSyncHooks struct{}

func (NoopSyncHooks) OnManifestSynced(context.Context, string, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registered holds one hook implementation behind a lock.
type registered[T any] struct {
	mu   sync.RWMutex
	hook T
	noop T
}

func (r *registered[T]) get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hook
}

func (r *registered[T]) set(h T, ok bool) {
	if !ok {
		return
	}
	r.mu.Lock()
	r.hook = h
	r.mu.Unlock()
}

func (r *registered[T]) reset() { r.set(r.noop, true) }

var (
	syncHooks  = &registered[SyncHooks]{hook: NoopSyncHooks{}, noop: NoopSyncHooks{}}
	cacheHooks = &registered[CacheHooks]{hook: NoopCacheHooks{}, noop: NoopCacheHooks{}}
	httpHooks  = &registered[HTTPHooks]{hook: NoopHTTPHooks{}, noop: NoopHTTPHooks{}}
)

// SetSyncHooks registers sync hooks. A nil h is ignored.
func SetSyncHooks(h SyncHooks) { syncHooks.set(h, h != nil) }

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h, h != nil) }

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h, h != nil) }

func Sync() SyncHooks   { return syncHooks.get() }
func Cache() CacheHooks { return cacheHooks.get() }
func HTTP() HTTPHooks   { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	syncHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
