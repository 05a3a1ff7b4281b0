package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fixora/oauth-service/application/port/outbound"
	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/infrastructure/http/response"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

// AccessTokenCookie is the cookie the access token is delivered in.
const AccessTokenCookie = "access_token"

type authUserKey struct{}

type AuthMiddleware struct {
	tokenService outbound.TokenService
	logger       logger.Logger
}

func NewAuthMiddleware(tokenService outbound.TokenService, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
}

// RequireAuth accepts the access token from "Authorization: Bearer" or the
// access_token cookie and stores its claims in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractAccessToken(r)
		if err != nil {
			response.Error(w, apperror.InvalidToken(err.Error(), nil))
			return
		}

		claims, err := m.tokenService.Verify(token)
		if err != nil {
			logger.LogSecurityEvent(r.Context(), m.logger, "access_token_rejected", "LOW", map[string]interface{}{
				"reason": err.Error(),
				"path":   r.URL.Path,
			})
			response.Error(w, apperror.InvalidToken("access token rejected", err))
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserClaims retrieves the verified access token claims from context.
func GetUserClaims(ctx context.Context) *outbound.TokenClaims {
	if claims, ok := ctx.Value(authUserKey{}).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}

func extractAccessToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization header format")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errors.New("access token required")
}
