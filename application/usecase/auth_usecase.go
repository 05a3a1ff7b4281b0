package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/oauth-service/application/port/inbound"
	"github.com/fixora/oauth-service/application/port/outbound"
	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/domain/entity"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 48 * time.Hour
)

// AuthUseCase orchestrates signup, login, refresh and logout. It keeps no
// mutable state of its own and is safe for concurrent use.
type AuthUseCase struct {
	userRepository  outbound.UserRepository
	tokenCache      outbound.TokenCache
	tokenService    outbound.TokenService
	passwordService outbound.PasswordService
	logger          logger.Logger
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenCache outbound.TokenCache,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	log logger.Logger,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) *AuthUseCase {
	if accessTokenTTL <= 0 {
		accessTokenTTL = DefaultAccessTokenTTL
	}
	if refreshTokenTTL <= 0 {
		refreshTokenTTL = DefaultRefreshTokenTTL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthUseCase{
		userRepository:  userRepo,
		tokenCache:      tokenCache,
		tokenService:    tokenService,
		passwordService: passwordService,
		logger:          log.WithFields(map[string]interface{}{"component": "auth_usecase"}),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

func (uc *AuthUseCase) Signup(ctx context.Context, req inbound.SignupRequest) (*inbound.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		logger.LogAuthEvent(ctx, uc.logger, "signup_password_mismatch", 0, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.PasswordMismatch()
	}

	existing, err := uc.userRepository.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		logger.LogAuthEvent(ctx, uc.logger, "signup_duplicate_email", existing.ID, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.DuplicateEmail(req.Email)
	case err != nil && !errors.Is(err, outbound.ErrUserNotFound):
		uc.logger.Error(ctx, "Failed to look up user by email", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreUnavailable("find user by email", err)
	}

	start := time.Now()
	hash, err := uc.passwordService.HashPassword(req.Password)
	logger.LogPerformance(ctx, uc.logger, "password_hash", time.Since(start), nil)
	if err != nil {
		uc.logger.Error(ctx, "Failed to hash password", err, nil)
		return nil, apperror.Internal("hash password", err)
	}

	user := entity.NewUser(req.Email, hash)
	if err := uc.userRepository.Create(ctx, user); err != nil {
		// the unique constraint is authoritative; the lookup above only short-circuits
		if errors.Is(err, outbound.ErrEmailTaken) {
			logger.LogAuthEvent(ctx, uc.logger, "signup_duplicate_email", 0, false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.DuplicateEmail(req.Email)
		}
		uc.logger.Error(ctx, "Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreUnavailable("create user", err)
	}

	resp, err := uc.issueTokens(ctx, user)
	if err != nil {
		if errors.Is(err, apperror.ErrTokenStoreUnavailable) {
			// No rollback: the account exists and the client can log in again.
			uc.logger.Warn(ctx, "User created but refresh token was not registered", map[string]interface{}{
				"user_id": user.ID,
			})
		}
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "signup_successful", user.ID, true, map[string]interface{}{
		"email": user.Email,
	})
	return resp, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.AuthResponse, error) {
	user, err := uc.userRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", 0, false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.UserNotFound(err)
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreUnavailable("find user by email", err)
	}
	if user == nil {
		return nil, apperror.UserNotFound(nil)
	}

	start := time.Now()
	valid, err := uc.passwordService.VerifyPassword(req.Password, user.PasswordHash)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": user.ID,
	})
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("verify password", err)
	}
	if !valid {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_wrong_password", user.ID, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.WrongPassword()
	}

	resp, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, true, map[string]interface{}{
		"email": user.Email,
	})
	return resp, nil
}

// Refresh mints a new access token for a live refresh token. The refresh
// token itself is neither rotated nor has its TTL extended.
func (uc *AuthUseCase) Refresh(ctx context.Context, req inbound.RefreshRequest) (*inbound.RefreshResponse, error) {
	if req.RefreshToken == "" {
		return nil, apperror.InvalidToken("refresh token is required", nil)
	}

	claims, err := uc.tokenService.Verify(req.RefreshToken)
	if err != nil {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_rejected", "MEDIUM", map[string]interface{}{
			"token":  "[REDACTED]",
			"reason": err.Error(),
		})
		return nil, apperror.InvalidToken("refresh token failed verification", err)
	}

	userID, err := uc.lookupRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if userID != claims.UserID {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_subject_mismatch", "HIGH", map[string]interface{}{
			"cached_user_id": userID,
			"claim_user_id":  claims.UserID,
		})
		return nil, apperror.InvalidToken("refresh token subject mismatch", nil)
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_user_not_found", "HIGH", map[string]interface{}{
				"user_id": userID,
			})
			return nil, apperror.InvalidToken("refresh token references unknown user", err)
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperror.StoreUnavailable("find user by id", err)
	}

	accessToken, err := uc.tokenService.Sign(user.ID, uc.accessTokenTTL)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("sign access token", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_refreshed", user.ID, true, nil)
	return &inbound.RefreshResponse{
		User:        user.Public(),
		AccessToken: accessToken,
		ExpiresIn:   int(uc.accessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes a refresh token by deleting its cache entry. A second
// logout with the same token fails with InvalidToken.
func (uc *AuthUseCase) Logout(ctx context.Context, req inbound.LogoutRequest) error {
	if req.RefreshToken == "" {
		return apperror.InvalidToken("refresh token is required", nil)
	}

	userID, err := uc.lookupRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	if _, err := uc.userRepository.FindByID(ctx, userID); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "logout_user_not_found", "HIGH", map[string]interface{}{
				"user_id": userID,
			})
			return apperror.UserNotFound(err)
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": userID,
		})
		return apperror.StoreUnavailable("find user by id", err)
	}

	deleted, err := uc.tokenCache.Delete(ctx, req.RefreshToken)
	if err != nil {
		uc.logger.Error(ctx, "Failed to revoke refresh token", err, map[string]interface{}{
			"user_id": userID,
		})
		return apperror.TokenStoreUnavailable("delete refresh token", err)
	}
	if !deleted {
		// revoked or expired between the lookup and the delete
		return apperror.InvalidToken("refresh token already revoked", nil)
	}

	logger.LogAuthEvent(ctx, uc.logger, "logout_successful", userID, true, nil)
	return nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*entity.PublicUser, error) {
	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.UserNotFound(err)
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperror.StoreUnavailable("find user by id", err)
	}

	public := user.Public()
	return &public, nil
}

// issueTokens mints an access/refresh pair for user and registers the
// refresh token. The user must already exist in the store.
func (uc *AuthUseCase) issueTokens(ctx context.Context, user *entity.User) (*inbound.AuthResponse, error) {
	accessToken, err := uc.tokenService.Sign(user.ID, uc.accessTokenTTL)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("sign access token", err)
	}

	refreshToken, err := uc.tokenService.Sign(user.ID, uc.refreshTokenTTL)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate refresh token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.Internal("sign refresh token", err)
	}

	if err := uc.tokenCache.Set(ctx, refreshToken, user.ID, uc.refreshTokenTTL); err != nil {
		uc.logger.Error(ctx, "Failed to store refresh token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperror.TokenStoreUnavailable("set refresh token", err)
	}

	return &inbound.AuthResponse{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(uc.accessTokenTTL.Seconds()),
	}, nil
}

func (uc *AuthUseCase) lookupRefreshToken(ctx context.Context, token string) (int64, error) {
	userID, err := uc.tokenCache.Get(ctx, token)
	if err != nil {
		if errors.Is(err, outbound.ErrRefreshTokenNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_not_found", "MEDIUM", map[string]interface{}{
				"token": "[REDACTED]",
			})
			return 0, apperror.InvalidToken("refresh token not registered", err)
		}
		uc.logger.Error(ctx, "Failed to look up refresh token", err, map[string]interface{}{
			"token": "[REDACTED]",
		})
		return 0, apperror.TokenStoreUnavailable("get refresh token", err)
	}
	return userID, nil
}
