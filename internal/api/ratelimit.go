package api

import (
	"net/http"
	"strings"

	"github.com/campuswall/campuswall-server/internal/ratelimit"
)

// rateLimitAuthRoutes limits login/signup attempts per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimitAuthRoutes(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				s.logger.Warn("auth rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				writeRateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitVotes limits vote casts per authenticated user; anonymous
// requests fall back to the client IP (and get rejected downstream).
func (s *Server) rateLimitVotes(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/vote") {
				next.ServeHTTP(w, r)
				return
			}

			key := OptionalUserID(r.Context())
			if key == "" {
				key = getClientIP(r)
			}
			if !limiter.Allow(key) {
				s.logger.Warn("vote rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				writeRateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"code":"RATE_LIMITED","message":"Too many requests. Please try again later."}`))
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the chain.
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
