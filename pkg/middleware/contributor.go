package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContributorKey is the context key for the contributor identity
	ContributorKey ContextKey = "contributor"

	// ContributorHeader carries the contributor's display name. Contributor
	// identity is free text matched by exact string; there are no accounts.
	ContributorHeader = "X-Contributor-Name"
)

// ContributorMiddleware reads the contributor name from the request header
// and stores it in the context. Requests without the header pass through;
// handlers that need an identity decide how to fail.
func ContributorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(ContributorHeader))
		if name != "" {
			ctx := context.WithValue(r.Context(), ContributorKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetContributor extracts the contributor name from the request context
func GetContributor(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ContributorKey).(string)
	return name, ok
}
