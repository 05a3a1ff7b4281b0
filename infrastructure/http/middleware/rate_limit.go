package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/infrastructure/http/response"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
	"github.com/fixora/oauth-service/infrastructure/service/ratelimit"
)

type RateLimitMiddleware struct {
	rateLimitService ratelimit.RateLimitService
	logger           logger.Logger
	trustProxy       bool
}

// NewRateLimitMiddleware keys requests on the peer address. Forwarding headers
// are honoured only when trustProxy is set, i.e. behind a proxy that rewrites them.
func NewRateLimitMiddleware(rateLimitService ratelimit.RateLimitService, log logger.Logger, trustProxy bool) *RateLimitMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
		trustProxy:       trustProxy,
	}
}

// Limit counts requests per client IP under the given scope, e.g. "login".
func (m *RateLimitMiddleware) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.rateLimitService == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientIP := getClientIP(r, m.trustProxy)
			key := scope + ":ip:" + clientIP

			decision, err := m.rateLimitService.Allow(ctx, key)
			if err != nil {
				// Redis trouble must not lock users out.
				m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
					"ip":    clientIP,
					"scope": scope,
				})
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "MEDIUM", map[string]interface{}{
					"ip":        clientIP,
					"path":      r.URL.Path,
					"attempts":  decision.Count,
					"limit":     decision.Limit,
					"userAgent": r.UserAgent(),
				})

				w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())+1))
				response.Error(w, apperror.RateLimited(scope))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts client IP from request
func getClientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteHost(r)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
