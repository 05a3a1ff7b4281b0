package outbound

import (
	"context"
	"errors"

	"github.com/fixora/oauth-service/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository is the durable credential store. Lookups that find nothing
// return ErrUserNotFound; any other error means the store could not answer.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create assigns user.ID and user.CreatedAt. A uniqueness violation on
	// email is reported as ErrEmailTaken.
	Create(ctx context.Context, user *entity.User) error
}
