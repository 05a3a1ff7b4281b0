package outbound

import (
	"context"
	"errors"
	"time"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenCache maps live refresh tokens to the user they were issued for.
// Absence of a mapping means the token was revoked, expired or never issued.
type TokenCache interface {
	Set(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
	// Delete reports whether a mapping was removed.
	Delete(ctx context.Context, token string) (bool, error)
}
