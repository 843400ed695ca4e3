// Package httputil provides HTTP helpers shared by the registry clients.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honouring Retry-After)
//
// Callers mark an error as transient by wrapping it in [RetryableError];
// anything else, including a 404, is returned on the first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// # Configuration
//
// [DefaultPolicy] makes 3 attempts starting at 500ms and doubling, with a
// single wait never exceeding 5s. Pass a custom [Policy] to [Retry] for
// anything else.
package httputil
