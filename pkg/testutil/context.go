package testutil

import (
	"net/http"
	"time"

	id "normativa/pkg/domain"
	"normativa/pkg/requestcontext"
)

// WithUser adds an authenticated user ID to the request context, simulating
// what the auth middleware does for authenticated requests. Invalid IDs are
// silently ignored.
func WithUser(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithTime pins the request-scoped clock, simulating the request-time
// middleware with a fixed timestamp.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
