// Package integrations provides the shared HTTP client for package registry APIs.
//
// # Overview
//
// Registry-specific clients live in subpackages and embed [Client]:
//
//   - [npm]: the npm registry, used to look up code and @types packages
//
// # Client Pattern
//
//	c := integrations.NewClient(cache.NewNullCache(), "npm:", time.Hour, headers)
//	err := c.Cached(ctx, name, false, &out, func() error {
//	    return c.Get(ctx, url, &out)
//	})
//
// [Client] handles:
//   - default headers (e.g. registry auth tokens)
//   - status classification: 404 becomes [ErrNotFound], 429 and 5xx become
//     retryable errors wrapping [ErrNetwork]
//   - retries with exponential backoff via [httputil.Retry]
//   - optional response caching through any [cache.Cache]
//
// [npm]: github.com/jeffijoe/typesync/pkg/integrations/npm
// [httputil.Retry]: github.com/jeffijoe/typesync/pkg/httputil.Retry
// [cache.Cache]: github.com/jeffijoe/typesync/pkg/cache.Cache
package integrations
