package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fixora/oauth-service/application/port/outbound"
)

// bcrypt ignores input past this many bytes, so longer passwords are refused.
const maxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// BcryptPasswordService is the password hasher behind signup and login.
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService uses bcrypt.DefaultCost for 0 and clamps other
// values into bcrypt's accepted range.
func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptPasswordService{cost: cost}
}

var _ outbound.PasswordService = (*BcryptPasswordService)(nil)

func (s *BcryptPasswordService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports a mismatch as (false, nil); errors mean the hash could not be checked.
func (s *BcryptPasswordService) VerifyPassword(password, hash string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}
	if hash == "" {
		return false, fmt.Errorf("stored hash is empty")
	}

	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare passwords: %w", err)
	}
}
