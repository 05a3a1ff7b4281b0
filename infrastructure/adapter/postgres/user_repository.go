package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fixora/oauth-service/application/port/outbound"
	"github.com/fixora/oauth-service/domain/entity"
)

const uniqueViolation = pq.ErrorCode("23505")

type UserRepositoryAdapter struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func NewUserRepositoryAdapter(db *sql.DB, queryTimeout time.Duration) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{
		db:           db,
		queryTimeout: queryTimeout,
	}
}

var _ outbound.UserRepository = (*UserRepositoryAdapter)(nil)

func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, outbound.ErrUserNotFound
	}

	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user entity.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, outbound.ErrUserNotFound
	}

	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user entity.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryAdapter) Create(ctx context.Context, user *entity.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("user email and password hash are required")
	}

	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return outbound.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
