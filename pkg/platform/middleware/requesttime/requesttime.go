// Package requesttime stamps a single "now" per HTTP request.
//
// Every operation within one request observes the same timestamp, so a
// recalculation triggered over HTTP evaluates all rules against one reference
// date and writes alerts with one created-at value.
package requesttime

import (
	"net/http"
	"time"

	"normativa/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
