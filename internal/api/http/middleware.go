package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/metrics"
	"agrirent-backend/internal/security"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the access-token claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims, ok
}

// AuthMiddleware validates bearer tokens and enforces roles.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < 8 || !strings.EqualFold(header[:7], "bearer ") {
			writeHTTPError(w, http.StatusUnauthorized, HTTPError{Code: "Unauthenticated", Message: "bearer token required"})
			return
		}
		claims, err := m.tokenManager.ValidateToken(header[7:])
		if err != nil {
			writeHTTPError(w, http.StatusUnauthorized, HTTPError{Code: "Unauthenticated", Message: "invalid token"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeHTTPError(w, http.StatusUnauthorized, HTTPError{Code: "Unauthenticated", Message: "user context not found"})
			return
		}
		if !claims.IsAdmin() {
			writeError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter keeps one token bucket per caller. Buckets idle long enough to have
// refilled completely are dropped, since a fresh bucket behaves the same.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*callerLimiter
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type callerLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	idle := 10 * time.Minute
	if perSecond > 0 && burst > 0 {
		idle = max(time.Minute, time.Duration(float64(burst)/perSecond*float64(time.Second)))
	}
	return &RateLimiter{
		limiters: make(map[string]*callerLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, c := range l.limiters {
			if now.Sub(c.lastSeen) >= l.idle {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.limiters[key]
	if !ok {
		c = &callerLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = c
	}
	c.lastSeen = now
	return c.Limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientKey(r)).Allow() {
			writeHTTPError(w, http.StatusTooManyRequests, HTTPError{Code: "RateLimited", Message: "too many attempts, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by user when authenticated, by address otherwise.
func clientKey(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return "user:" + strconv.Itoa(int(claims.UserID))
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return "ip:" + strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Metrics records request latency labelled by route template.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.ObserveHTTP(route, r.Method, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}
