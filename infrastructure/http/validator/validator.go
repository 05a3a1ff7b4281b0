package validator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fixora/oauth-service/application/port/inbound"
	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/domain/valueobject"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required")
		}
		return apperror.Validation("request body must be valid JSON")
	}
	if dec.More() {
		return apperror.Validation("request body must contain a single JSON object")
	}
	return nil
}

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

func ValidateSignup(req inbound.SignupRequest) error {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return err
	}
	if req.ConfirmPassword == "" {
		return apperror.Validation("confirm_password is required")
	}
	return nil
}

func ValidateLogin(req inbound.LoginRequest) error {
	return validateCredentials(req.Email, req.Password)
}

func ValidateRefresh(req inbound.RefreshRequest) error {
	if !ValidateRequired(req.RefreshToken) {
		return apperror.Validation("token is required")
	}
	return nil
}

func ValidateLogout(req inbound.LogoutRequest) error {
	if !ValidateRequired(req.RefreshToken) {
		return apperror.Validation("refreshToken is required")
	}
	return nil
}

func validateCredentials(email, password string) error {
	if !ValidateRequired(email) {
		return apperror.Validation("email is required")
	}
	// passwords are taken verbatim; whitespace is a legal character
	if password == "" {
		return apperror.Validation("password is required")
	}
	if _, err := valueobject.NewCredentials(email, password); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}
