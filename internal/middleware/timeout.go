package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns a middleware that cancels the request context after the
// given duration. Handlers observing the context abandon their work; if the
// deadline passed and nothing was written yet, the client receives 408.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			wrapped := wrapResponseWriter(w)

			defer func() {
				cancel()
				if ctx.Err() == context.DeadlineExceeded && !wrapped.wroteHeader {
					writeError(wrapped, http.StatusRequestTimeout, "Request timeout exceeded")
				}
			}()

			next.ServeHTTP(wrapped, r.WithContext(ctx))
		})
	}
}
