package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/navtrail/navtrail-backend/internal/ratelimit"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier validates a bearer token and returns the account ID it
// carries.
type TokenVerifier interface {
	ParseToken(token string) (uuid.UUID, error)
}

// Authenticator rejects requests without a valid Bearer token and stores
// the authenticated user ID in the request context.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Authentication required"})
				return
			}

			userID, err := verifier.ParseToken(token)
			if err != nil {
				respond(w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user ID set by Authenticator.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RateLimit answers 429 once the key derived from the request exhausts
// the store's window limit.
func RateLimit(store ratelimit.Store, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Allow(key(r)) {
				respond(w, http.StatusTooManyRequests, envelope{Success: false, Message: "Too many requests, please try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserKey keys the limiter by authenticated user, falling back to the
// client IP for unauthenticated requests.
func UserKey(r *http.Request) string {
	if id, ok := UserID(r.Context()); ok {
		return "user:" + id.String()
	}
	return "ip:" + clientIP(r)
}

// IPKey keys the limiter by client IP.
func IPKey(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// clientIP strips the port when present. The RealIP middleware has
// already replaced RemoteAddr with the forwarded address if one was set.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
