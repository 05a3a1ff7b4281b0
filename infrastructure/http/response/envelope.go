package response

import (
	"encoding/json"
	"net/http"

	"github.com/fixora/oauth-service/domain/apperror"
)

// AuthBody is written by sign up and login.
type AuthBody struct {
	Success      bool   `json:"success"`
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

// UserBody wraps the public user for refresh and me.
type UserBody struct {
	User interface{} `json:"user"`
}

type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, body interface{}) {
	WriteJSON(w, http.StatusOK, body)
}

func Message(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, MessageBody{Success: true, Message: message})
}

// Error writes err using the status and public code of its kind.
func Error(w http.ResponseWriter, err error) {
	WriteJSON(w, apperror.HTTPStatus(err), apperror.NewErrorResponse(err))
}

// Status writes a catalogued error body under an explicit status code, for
// failures raised by the router itself rather than by the auth engine.
func Status(w http.ResponseWriter, statusCode int, code apperror.ErrorCode, message string) {
	WriteJSON(w, statusCode, apperror.ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func NotFound(w http.ResponseWriter) {
	Status(w, http.StatusNotFound, apperror.ErrCodeInvalidRequest, "Route not found")
}

func MethodNotAllowed(w http.ResponseWriter) {
	Status(w, http.StatusMethodNotAllowed, apperror.ErrCodeInvalidRequest, "Method not allowed")
}
