package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/oauth-service/application/port/inbound"
	"github.com/fixora/oauth-service/domain/apperror"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name    string
		req     inbound.SignupRequest
		wantErr bool
	}{
		{"valid", inbound.SignupRequest{Email: "a@x.com", Password: "Secret123!", ConfirmPassword: "Secret123!"}, false},
		{"mismatch is left to the engine", inbound.SignupRequest{Email: "a@x.com", Password: "Secret123!", ConfirmPassword: "Other123!"}, false},
		{"missing email", inbound.SignupRequest{Password: "Secret123!", ConfirmPassword: "Secret123!"}, true},
		{"bad email", inbound.SignupRequest{Email: "not-an-email", Password: "Secret123!", ConfirmPassword: "Secret123!"}, true},
		{"short password", inbound.SignupRequest{Email: "a@x.com", Password: "short", ConfirmPassword: "short"}, true},
		{"long password", inbound.SignupRequest{Email: "a@x.com", Password: strings.Repeat("p", 37), ConfirmPassword: strings.Repeat("p", 37)}, true},
		{"missing confirm", inbound.SignupRequest{Email: "a@x.com", Password: "Secret123!"}, true},
		{"whitespace password", inbound.SignupRequest{Email: "a@x.com", Password: "        ", ConfirmPassword: "        "}, false},
		{"short whitespace password", inbound.SignupRequest{Email: "a@x.com", Password: "   ", ConfirmPassword: "   "}, true},
		{"blank email", inbound.SignupRequest{Email: "   ", Password: "Secret123!", ConfirmPassword: "Secret123!"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(inbound.LoginRequest{Email: "a@x.com", Password: "12345678"}))
	assert.ErrorIs(t, ValidateLogin(inbound.LoginRequest{Email: "a@x.com"}), apperror.ErrValidation)
	assert.NoError(t, ValidateLogin(inbound.LoginRequest{Email: "a@x.com", Password: "         "}))
	assert.ErrorIs(t, ValidateLogin(inbound.LoginRequest{Email: "Alice <a@x.com>", Password: "12345678"}), apperror.ErrValidation)
}

func TestValidateTokens(t *testing.T) {
	assert.NoError(t, ValidateRefresh(inbound.RefreshRequest{RefreshToken: "t"}))
	assert.ErrorIs(t, ValidateRefresh(inbound.RefreshRequest{RefreshToken: "  "}), apperror.ErrValidation)

	assert.NoError(t, ValidateLogout(inbound.LogoutRequest{RefreshToken: "t"}))
	assert.ErrorIs(t, ValidateLogout(inbound.LogoutRequest{AccessToken: "a"}), apperror.ErrValidation)
}

func TestDecodeJSON(t *testing.T) {
	var req inbound.LoginRequest

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@x.com","password":"12345678"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &req))
	assert.Equal(t, "a@x.com", req.Email)

	r = httptest.NewRequest("POST", "/", strings.NewReader(``))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &req), apperror.ErrValidation)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &req), apperror.ErrValidation)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{} {}`))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &req), apperror.ErrValidation)
}
