package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fixora/oauth-service/application/port/outbound"
)

var ErrMissingSecret = errors.New("jwt secret must not be empty")

// claims is the signed payload shared by access and refresh tokens.
type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 tokens with a process-wide secret.
type JWTService struct {
	hmacSecret []byte
	now        func() time.Time
}

func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &JWTService{
		hmacSecret: []byte(secret),
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	clone := *s
	clone.now = now
	return &clone
}

var _ outbound.TokenService = (*JWTService)(nil)

func (s *JWTService) Sign(userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	issuedAt := s.now()
	tokenClaims := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *JWTService) Verify(tokenString string) (*outbound.TokenClaims, error) {
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.hmacSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, s.handleValidationError(err)
	}
	if !token.Valid {
		return nil, outbound.ErrTokenSignatureInvalid
	}

	out := &outbound.TokenClaims{
		UserID:  parsed.UserID,
		TokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		out.ExpiresAt = parsed.ExpiresAt.Time
	}
	return out, nil
}

// handleValidationError folds every non-expiry failure into a signature error.
func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", outbound.ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %v", outbound.ErrTokenSignatureInvalid, err)
}
