package api

import (
	"github.com/example/user-auth-service/modules/auth"
)

// RegisterRequest represents a user registration request body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

// LoginRequest represents a login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest represents a profile update body. Fields may arrive as
// JSON or as multipart form values next to a profilePicture file.
type UpdateUserRequest struct {
	Name     *string `json:"name" form:"name"`
	Division *string `json:"division" form:"division"`
}

// ErrorResponse is the error envelope: {status, message}.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is the success envelope for bodyless results.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SessionResponse is returned by register and login: the access token and
// the safe user claims. The refresh token is set as a cookie, never in
// the body.
type SessionResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	AccessToken string            `json:"accessToken"`
	User        auth.ClaimsRecord `json:"user"`
}

// TokenResponse is returned by the refresh endpoint.
type TokenResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// UsersResponse is returned by the list endpoint.
type UsersResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    []auth.UserRecord `json:"data"`
}

// UserResponse is returned by single-user endpoints.
type UserResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	User    auth.UserRecord `json:"user"`
}
