package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixora/oauth-service/application/port/outbound"
	"github.com/fixora/oauth-service/application/usecase"
	"github.com/fixora/oauth-service/domain/entity"
	"github.com/fixora/oauth-service/infrastructure/adapter/rediscache"
	"github.com/fixora/oauth-service/infrastructure/http/handler"
	"github.com/fixora/oauth-service/infrastructure/http/middleware"
	"github.com/fixora/oauth-service/infrastructure/service/jwt"
	"github.com/fixora/oauth-service/infrastructure/service/password"
	"github.com/fixora/oauth-service/infrastructure/service/ratelimit"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []*entity.User
}

func (m *memoryUsers) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, outbound.ErrUserNotFound
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, outbound.ErrUserNotFound
}

func (m *memoryUsers) Create(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return outbound.ErrEmailTaken
		}
	}
	user.ID = int64(len(m.users) + 1)
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

type stack struct {
	handler http.Handler
	redis   *miniredis.Miniredis
}

func newStack(t *testing.T, attempts int) *stack {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tokens, err := jwt.NewJWTService("server-test-secret")
	require.NoError(t, err)

	engine := usecase.NewAuthUseCase(
		&memoryUsers{},
		rediscache.NewTokenCacheAdapter(client, rediscache.DefaultKeyPrefix, time.Second),
		tokens,
		password.NewBcryptPasswordService(bcrypt.MinCost),
		nil,
		15*time.Minute,
		48*time.Hour,
	)
	limiter := ratelimit.NewRateLimitService(client, ratelimit.RateLimitConfig{Enabled: true, Attempts: attempts, Window: time.Minute}, nil)

	return &stack{
		redis: mr,
		handler: NewRouter(ServerConfig{CORSAllowedOrigins: []string{"https://app.example"}}, Dependencies{
			AuthHandler:    handler.NewAuthHandler(engine, handler.CookieConfig{}, nil),
			AuthMiddleware: middleware.NewAuthMiddleware(tokens, nil),
			RateLimit:      middleware.NewRateLimitMiddleware(limiter, nil, false),
		}),
	}
}

func (s *stack) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func accessCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AccessTokenCookie {
			return c
		}
	}
	return nil
}

func TestServerAuthLifecycle(t *testing.T) {
	s := newStack(t, 100)

	rec, body := s.post(t, "/api/oauth/sign_up", `{"email":"a@x.com","password":"Secret123!","confirm_password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["id"])
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationIDHeader))

	rec, body = s.post(t, "/api/oauth/sign_up", `{"email":"a@x.com","password":"Secret123!","confirm_password":"Secret123!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALID_2007", body["code"])

	rec, _ = s.post(t, "/api/oauth/login", `{"email":"a@x.com","password":"Wrong1234!"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.post(t, "/api/oauth/login", `{"email":"b@x.com","password":"Secret123!"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = s.post(t, "/api/oauth/login", `{"email":"a@x.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshToken := body["refreshToken"].(string)
	require.NotEmpty(t, refreshToken)
	cookie := accessCookie(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/oauth/me", nil)
	req.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	s.handler.ServeHTTP(meRec, req)
	require.Equal(t, http.StatusOK, meRec.Code)
	assert.JSONEq(t, `{"user":{"id":1,"email":"a@x.com"}}`, meRec.Body.String())

	rec, _ = s.post(t, "/api/oauth/refresh", `{"token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"id":1,"email":"a@x.com"}}`, rec.Body.String())

	rec, body = s.post(t, "/api/oauth/logout", `{"refreshToken":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = s.post(t, "/api/oauth/refresh", `{"token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.post(t, "/api/oauth/logout", `{"refreshToken":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerRefreshAfterCacheEntryExpires(t *testing.T) {
	s := newStack(t, 100)

	_, body := s.post(t, "/api/oauth/sign_up", `{"email":"c@x.com","password":"Secret123!","confirm_password":"Secret123!"}`)
	refreshToken := body["refreshToken"].(string)

	s.redis.FastForward(49 * time.Hour)

	rec, _ := s.post(t, "/api/oauth/refresh", `{"token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerTokenStoreDown(t *testing.T) {
	s := newStack(t, 100)

	_, body := s.post(t, "/api/oauth/sign_up", `{"email":"d@x.com","password":"Secret123!","confirm_password":"Secret123!"}`)
	refreshToken := body["refreshToken"].(string)

	s.redis.Close()

	rec, body := s.post(t, "/api/oauth/refresh", `{"token":"`+refreshToken+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "STORE_5002", body["code"])
}

func TestServerRateLimitsLogin(t *testing.T) {
	s := newStack(t, 2)

	for i := 0; i < 2; i++ {
		rec, _ := s.post(t, "/api/oauth/login", `{"email":"e@x.com","password":"Secret123!"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec, body := s.post(t, "/api/oauth/login", `{"email":"e@x.com","password":"Secret123!"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_3001", body["code"])

	// refresh is not rate limited
	rec, _ = s.post(t, "/api/oauth/refresh", `{"token":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerWrongMethodOnAuthRoutes(t *testing.T) {
	s := newStack(t, 100)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/oauth/sign_up"},
		{http.MethodGet, "/api/oauth/login"},
		{http.MethodDelete, "/api/oauth/refresh"},
		{http.MethodGet, "/api/oauth/logout"},
		{http.MethodPost, "/api/oauth/me"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Contains(t, rec.Body.String(), "Method not allowed")
		})
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/oauth/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestServerUnknownRouteAndMethod(t *testing.T) {
	s := newStack(t, 100)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/oauth/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
