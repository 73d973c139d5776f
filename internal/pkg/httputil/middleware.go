package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/andela-jare/CP3-DMS/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

// TokenHeader carries the session token on incoming requests.
const TokenHeader = "x-access-token"

// Authentication failure messages exposed to clients.
const (
	MsgNoToken            = "Authentication is required. No token provided."
	MsgInvalidToken       = "Invalid token. Login or register to continue"
	MsgSessionInvalidated = "Please sign in or register to continue."
	MsgNotAuthorized      = "You are not authorized!"
)

// Errors a TokenAuthenticator reports. ErrInvalidToken covers signature,
// expiry, and malformed-token failures; ErrSessionInvalidated means the
// token verified but the user's stored session marker no longer accepts it.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// Context keys for storing user information.
const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// TokenAuthenticator resolves the identity behind a session token.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (domain.Requester, error)
}

// AuthMiddleware creates authentication middleware. It reads the session
// token from the x-access-token header, verifies it, and re-checks the
// user's stored session marker so that logout invalidates earlier tokens.
func AuthMiddleware(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				metrics.AuthFailures.WithLabelValues("missing_token").Inc()
				Error(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			requester, err := authenticator.AuthenticateToken(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, ErrSessionInvalidated):
					metrics.AuthFailures.WithLabelValues("session_invalidated").Inc()
					Error(w, http.StatusUnauthorized, MsgSessionInvalidated)
				default:
					metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
					Error(w, http.StatusUnauthorized, MsgInvalidToken)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, requester.UserID)
			ctx = context.WithValue(ctx, RoleKey, requester.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose resolved role is not admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(RoleKey).(string)
		if !ok {
			Error(w, http.StatusUnauthorized, MsgNoToken)
			return
		}

		if role != domain.RoleAdmin {
			metrics.AuthFailures.WithLabelValues("not_admin").Inc()
			Error(w, http.StatusForbidden, MsgNotAuthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetRequester extracts the authenticated requester from context.
func GetRequester(ctx context.Context) domain.Requester {
	var requester domain.Requester
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		requester.UserID = id
	}
	if role, ok := ctx.Value(RoleKey).(string); ok {
		requester.Role = role
	}
	return requester
}

// GetUserID extracts user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// RateLimitMiddleware limits requests per client IP with a token bucket.
// Used on credential endpoints to slow brute-force attempts.
func RateLimitMiddleware(perSecond float64, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[ip]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(perSecond), burst)
		limiters[ip] = l
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiterFor(ip).Allow() {
				Error(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
