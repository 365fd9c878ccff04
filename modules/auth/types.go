package auth

import (
	"time"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse represents a started session: the token pair plus the
// safe user claims. The boundary turns the refresh token into a cookie.
type SessionResponse struct {
	AccessToken   string       `json:"access_token"`
	RefreshToken  string       `json:"refresh_token"`
	RefreshMaxAge int64        `json:"refresh_max_age"`
	User          ClaimsRecord `json:"user"`
}

// ClaimsRecord mirrors the claims embedded in issued tokens.
type ClaimsRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the newly minted access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutResponse represents a logout response.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// ValidateTokenRequest represents an access token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents an access token validation response.
type ValidateTokenResponse struct {
	Valid    bool   `json:"valid"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Division string `json:"division,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ListUsersRequest represents a list users request.
type ListUsersRequest struct{}

// ListUsersResponse represents a list users response.
type ListUsersResponse struct {
	Users []UserRecord `json:"users"`
	Total int          `json:"total"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	ID string `json:"id"`
}

// UserRecord represents a full user record in responses, minus credentials.
type UserRecord struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Name              string    `json:"name"`
	Division          string    `json:"division"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpdateUserRequest represents a partial user update. Nil fields are left
// untouched.
type UpdateUserRequest struct {
	ID                string  `json:"id"`
	Name              *string `json:"name,omitempty"`
	Division          *string `json:"division,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

// DeleteUserRequest represents a delete user request.
type DeleteUserRequest struct {
	ID string `json:"id"`
}

// DeleteUserResponse represents a delete user response.
type DeleteUserResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}
