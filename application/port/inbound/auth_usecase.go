package inbound

import (
	"context"

	"github.com/fixora/oauth-service/domain/entity"
)

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by Signup and Login.
type AuthResponse struct {
	User         entity.PublicUser `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int               `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"token"`
}

type RefreshResponse struct {
	User        entity.PublicUser `json:"user"`
	AccessToken string            `json:"access_token"`
	ExpiresIn   int               `json:"expires_in"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
}

type AuthUseCase interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, req LogoutRequest) error
	Me(ctx context.Context, userID int64) (*entity.PublicUser, error)
}
