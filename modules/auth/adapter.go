package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for session and user operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error)
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	GetUser(ctx context.Context, id string) (*UserRecord, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*UserRecord, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// call invokes a request-reply service with JSON codecs.
func (a *AuthAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Register creates a new user account and session.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates a user and starts a session.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp RefreshResponse
	if err := a.call(ctx, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout terminates the session bound to the refresh token.
func (a *AuthAdapter) Logout(ctx context.Context, refreshToken string) error {
	req := LogoutRequest{RefreshToken: refreshToken}
	var resp LogoutResponse
	return a.call(ctx, "logout", &req, &resp)
}

// ValidateToken validates an access token.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers retrieves all users.
func (a *AuthAdapter) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	var resp ListUsersResponse
	if err := a.call(ctx, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	req := GetUserRequest{ID: id}
	var resp UserRecord
	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUser applies a partial update to a user.
func (a *AuthAdapter) UpdateUser(ctx context.Context, req UpdateUserRequest) (*UserRecord, error) {
	var resp UserRecord
	if err := a.call(ctx, "update-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser removes a user by ID.
func (a *AuthAdapter) DeleteUser(ctx context.Context, id string) error {
	req := DeleteUserRequest{ID: id}
	var resp DeleteUserResponse
	return a.call(ctx, "delete-user", &req, &resp)
}
