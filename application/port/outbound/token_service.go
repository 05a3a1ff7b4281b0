package outbound

import (
	"errors"
	"time"
)

var (
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

type TokenClaims struct {
	UserID    int64
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenService interface {
	Sign(userID int64, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}
