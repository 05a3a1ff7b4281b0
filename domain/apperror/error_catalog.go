package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failures the auth engine reports.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPasswordMismatch
	KindDuplicateEmail
	KindUserNotFound
	KindWrongPassword
	KindInvalidToken
	KindRateLimited
	KindStoreUnavailable
	KindTokenStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindPasswordMismatch:
		return "PasswordMismatch"
	case KindDuplicateEmail:
		return "DuplicateEmail"
	case KindUserNotFound:
		return "UserNotFound"
	case KindWrongPassword:
		return "WrongPassword"
	case KindInvalidToken:
		return "InvalidToken"
	case KindRateLimited:
		return "RateLimited"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	case KindTokenStoreUnavailable:
		return "TokenStoreUnavailable"
	default:
		return "Internal"
	}
}

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Authentication Errors (1xxx)
	ErrCodeUserNotFound  ErrorCode = "AUTH_1002"
	ErrCodeInvalidToken  ErrorCode = "AUTH_1003"
	ErrCodeWrongPassword ErrorCode = "AUTH_1009"

	// Validation Errors (2xxx)
	ErrCodeInvalidRequest   ErrorCode = "VALID_2005"
	ErrCodePasswordMismatch ErrorCode = "VALID_2006"
	ErrCodeDuplicateEmail   ErrorCode = "VALID_2007"

	// Rate Limiting Errors (3xxx)
	ErrCodeRateLimitExceeded ErrorCode = "RATE_3001"

	// Store Errors (5xxx)
	ErrCodeStoreUnavailable      ErrorCode = "STORE_5001"
	ErrCodeTokenStoreUnavailable ErrorCode = "STORE_5002"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
)

// AppError represents a structured application error
type AppError struct {
	Kind    Kind      `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same kind, so the sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewAppError creates a new application error
func NewAppError(kind Kind, code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation            = &AppError{Kind: KindValidation, Code: ErrCodeInvalidRequest, Message: "Invalid request"}
	ErrPasswordMismatch      = &AppError{Kind: KindPasswordMismatch, Code: ErrCodePasswordMismatch, Message: "Passwords do not match"}
	ErrDuplicateEmail        = &AppError{Kind: KindDuplicateEmail, Code: ErrCodeDuplicateEmail, Message: "User is already registered"}
	ErrUserNotFound          = &AppError{Kind: KindUserNotFound, Code: ErrCodeUserNotFound, Message: "User not found"}
	ErrWrongPassword         = &AppError{Kind: KindWrongPassword, Code: ErrCodeWrongPassword, Message: "Wrong password"}
	ErrInvalidToken          = &AppError{Kind: KindInvalidToken, Code: ErrCodeInvalidToken, Message: "Invalid token"}
	ErrRateLimited           = &AppError{Kind: KindRateLimited, Code: ErrCodeRateLimitExceeded, Message: "Too many requests"}
	ErrStoreUnavailable      = &AppError{Kind: KindStoreUnavailable, Code: ErrCodeStoreUnavailable, Message: "User store unavailable"}
	ErrTokenStoreUnavailable = &AppError{Kind: KindTokenStoreUnavailable, Code: ErrCodeTokenStoreUnavailable, Message: "Token store unavailable"}
	ErrInternal              = &AppError{Kind: KindInternal, Code: ErrCodeInternalServerError, Message: "Unexpected error"}
)

// Common error constructors

func Validation(details string) *AppError {
	return NewAppError(KindValidation, ErrCodeInvalidRequest, ErrValidation.Message, details, nil)
}

func PasswordMismatch() *AppError {
	return NewAppError(KindPasswordMismatch, ErrCodePasswordMismatch, ErrPasswordMismatch.Message, "", nil)
}

func DuplicateEmail(email string) *AppError {
	return NewAppError(KindDuplicateEmail, ErrCodeDuplicateEmail, ErrDuplicateEmail.Message, fmt.Sprintf("Email: %s", email), nil)
}

func UserNotFound(cause error) *AppError {
	return NewAppError(KindUserNotFound, ErrCodeUserNotFound, ErrUserNotFound.Message, "", cause)
}

func WrongPassword() *AppError {
	return NewAppError(KindWrongPassword, ErrCodeWrongPassword, ErrWrongPassword.Message, "", nil)
}

func InvalidToken(details string, cause error) *AppError {
	return NewAppError(KindInvalidToken, ErrCodeInvalidToken, ErrInvalidToken.Message, details, cause)
}

func RateLimited(details string) *AppError {
	return NewAppError(KindRateLimited, ErrCodeRateLimitExceeded, ErrRateLimited.Message, details, nil)
}

func StoreUnavailable(operation string, cause error) *AppError {
	return NewAppError(KindStoreUnavailable, ErrCodeStoreUnavailable, ErrStoreUnavailable.Message, fmt.Sprintf("Operation: %s", operation), cause)
}

func TokenStoreUnavailable(operation string, cause error) *AppError {
	return NewAppError(KindTokenStoreUnavailable, ErrCodeTokenStoreUnavailable, ErrTokenStoreUnavailable.Message, fmt.Sprintf("Operation: %s", operation), cause)
}

func Internal(details string, cause error) *AppError {
	return NewAppError(KindInternal, ErrCodeInternalServerError, ErrInternal.Message, details, cause)
}

// KindOf reports the kind of err. Errors outside the catalog are Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the HTTP layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindPasswordMismatch, KindDuplicateEmail:
		return http.StatusBadRequest
	case KindInvalidToken, KindWrongPassword:
		return http.StatusUnauthorized
	case KindUserNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewErrorResponse builds the public view of err. Causes, and details other
// than validation messages, stay server side.
func NewErrorResponse(err error) ErrorResponse {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}
	message := appErr.Message
	// validation details describe the client's own input
	if appErr.Kind == KindValidation && appErr.Details != "" {
		message = appErr.Details
	}
	return ErrorResponse{
		Success: false,
		Code:    appErr.Code,
		Message: message,
	}
}
