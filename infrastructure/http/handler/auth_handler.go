package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/oauth-service/application/port/inbound"
	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/infrastructure/http/middleware"
	"github.com/fixora/oauth-service/infrastructure/http/response"
	"github.com/fixora/oauth-service/infrastructure/http/validator"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

// CookieConfig controls the access token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
	cookie      CookieConfig
	logger      logger.Logger
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, cookie CookieConfig, log logger.Logger) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 15 * time.Minute
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthHandler{
		authUseCase: authUseCase,
		cookie:      cookie,
		logger:      log,
	}
}

// apiPrefix is joined onto each route rather than mounted as a subrouter so
// the root router's not-found and method-not-allowed handlers apply.
const apiPrefix = "/api/oauth"

// RegisterRoutes mounts the auth endpoints. Sign up and login are wrapped by
// limit when it is non-nil; me requires a verified access token.
func (h *AuthHandler) RegisterRoutes(router *mux.Router, auth *middleware.AuthMiddleware, limit *middleware.RateLimitMiddleware) {
	signUp := http.Handler(http.HandlerFunc(h.SignUp))
	login := http.Handler(http.HandlerFunc(h.Login))
	if limit != nil {
		signUp = limit.Limit("sign_up")(signUp)
		login = limit.Limit("login")(login)
	}

	router.Handle(apiPrefix+"/sign_up", signUp).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/login", login).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/logout", h.Logout).Methods(http.MethodPost)
	router.Handle(apiPrefix+"/me", auth.RequireAuth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req inbound.SignupRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := validator.ValidateSignup(req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := h.authUseCase.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, r, "sign_up", err)
		return
	}

	h.setAccessCookie(w, res.AccessToken)
	response.OK(w, response.AuthBody{
		Success:      true,
		ID:           res.User.ID,
		Email:        res.User.Email,
		RefreshToken: res.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := validator.ValidateLogin(req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	h.setAccessCookie(w, res.AccessToken)
	response.OK(w, response.AuthBody{
		Success:      true,
		ID:           res.User.ID,
		Email:        res.User.Email,
		RefreshToken: res.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req inbound.RefreshRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := validator.ValidateRefresh(req); err != nil {
		response.Error(w, err)
		return
	}

	res, err := h.authUseCase.Refresh(r.Context(), req)
	if err != nil {
		h.fail(w, r, "refresh", err)
		return
	}

	h.setAccessCookie(w, res.AccessToken)
	response.OK(w, response.UserBody{User: res.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req inbound.LogoutRequest
	if err := validator.DecodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := validator.ValidateLogout(req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.authUseCase.Logout(r.Context(), req); err != nil {
		h.fail(w, r, "logout", err)
		return
	}

	h.clearAccessCookie(w)
	response.Message(w, "Logged out successfully")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.Error(w, apperror.InvalidToken("user not authenticated", nil))
		return
	}

	user, err := h.authUseCase.Me(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, "me", err)
		return
	}

	response.OK(w, response.UserBody{User: user})
}

// Health reports liveness only.
func Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "healthy"})
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if apperror.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "Auth operation failed", err, map[string]interface{}{
			"operation": operation,
		})
	}
	response.Error(w, err)
}

func (h *AuthHandler) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
	})
}

func (h *AuthHandler) clearAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
