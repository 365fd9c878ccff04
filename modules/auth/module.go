package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	domain "github.com/example/user-auth-service/domain/user"
	"github.com/example/user-auth-service/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule provides session and user management services.
type AuthModule struct {
	db      *gorm.DB
	service *SessionService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(dbPath string) *AuthModule {
	return &AuthModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the database and builds the session service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	repo := NewUserRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	hasher := NewPasswordHasher()
	tokens := NewTokenManager(loadTokenConfig())
	m.service = NewSessionService(repo, hasher, tokens)

	log.Printf("[auth] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// SetCache wires an optional Redis cache into the user read path. Must be
// called after Start.
func (m *AuthModule) SetCache(c *cache.Cache) {
	if m.service != nil {
		m.service.SetCache(c)
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"register", func() error {
			return helper.RegisterTypedRequestReplyService(container, "register", json.Unmarshal, json.Marshal, m.handleRegister)
		}},
		{"login", func() error {
			return helper.RegisterTypedRequestReplyService(container, "login", json.Unmarshal, json.Marshal, m.handleLogin)
		}},
		{"refresh-token", func() error {
			return helper.RegisterTypedRequestReplyService(container, "refresh-token", json.Unmarshal, json.Marshal, m.handleRefresh)
		}},
		{"logout", func() error {
			return helper.RegisterTypedRequestReplyService(container, "logout", json.Unmarshal, json.Marshal, m.handleLogout)
		}},
		{"validate-token", func() error {
			return helper.RegisterTypedRequestReplyService(container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken)
		}},
		{"list-users", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers)
		}},
		{"get-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser)
		}},
		{"update-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-user", json.Unmarshal, json.Marshal, m.handleUpdateUser)
		}},
		{"delete-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-user", json.Unmarshal, json.Marshal, m.handleDeleteUser)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Printf("[auth] Registered services: register, login, refresh-token, logout, validate-token, list-users, get-user, update-user, delete-user")
	return nil
}

// handleRegister handles user registration.
func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Register(ctx, req.Username, req.Password, req.Name, req.Division)
	if err != nil {
		return SessionResponse{}, err
	}
	return m.toSessionResponse(session), nil
}

// handleLogin handles user login.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	return m.toSessionResponse(session), nil
}

// handleRefresh handles access token renewal.
func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (RefreshResponse, error) {
	accessToken, err := m.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return RefreshResponse{}, err
	}
	return RefreshResponse{AccessToken: accessToken}, nil
}

// handleLogout handles session termination.
func (m *AuthModule) handleLogout(ctx context.Context, req LogoutRequest, _ *mono.Msg) (LogoutResponse, error) {
	if err := m.service.Logout(ctx, req.RefreshToken); err != nil {
		return LogoutResponse{}, err
	}
	return LogoutResponse{LoggedOut: true}, nil
}

// handleValidateToken handles access token validation. Validation failures
// are reported in the response rather than as errors.
func (m *AuthModule) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.VerifyAccess(req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrTokenExpired) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:    true,
		ID:       claims.UserID,
		Username: claims.Username,
		Name:     claims.Name,
		Division: claims.Division,
	}, nil
}

// handleListUsers handles listing all users.
func (m *AuthModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	if err != nil {
		return ListUsersResponse{}, err
	}

	resp := ListUsersResponse{
		Users: make([]UserRecord, 0, len(users)),
		Total: len(users),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserRecord(u))
	}
	return resp, nil
}

// handleGetUser handles get user requests.
func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserRecord, error) {
	user, err := m.service.GetUser(ctx, req.ID)
	if err != nil {
		return UserRecord{}, err
	}
	return toUserRecord(user), nil
}

// handleUpdateUser handles partial user updates.
func (m *AuthModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest, _ *mono.Msg) (UserRecord, error) {
	user, err := m.service.UpdateUser(ctx, req.ID, req.Name, req.Division, req.ProfilePictureURL)
	if err != nil {
		return UserRecord{}, err
	}
	return toUserRecord(user), nil
}

// handleDeleteUser handles user deletion.
func (m *AuthModule) handleDeleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.DeleteUser(ctx, req.ID); err != nil {
		return DeleteUserResponse{Deleted: false, ID: req.ID}, err
	}
	return DeleteUserResponse{Deleted: true, ID: req.ID}, nil
}

func (m *AuthModule) toSessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		AccessToken:   session.AccessToken,
		RefreshToken:  session.RefreshToken,
		RefreshMaxAge: m.service.tokens.RefreshTokenMaxAge(),
		User: ClaimsRecord{
			ID:       session.User.UserID,
			Username: session.User.Username,
			Name:     session.User.Name,
			Division: session.User.Division,
		},
	}
}

func toUserRecord(u *domain.User) UserRecord {
	return UserRecord{
		ID:                u.ID,
		Username:          u.Username,
		Name:              u.Name,
		Division:          u.Division,
		ProfilePictureURL: u.ProfilePictureURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// loadTokenConfig loads token configuration from environment variables.
func loadTokenConfig() TokenConfig {
	config := DefaultTokenConfig()

	if secret := os.Getenv("ACCESS_KEY_SECRET"); secret != "" {
		config.AccessSecret = secret
	}
	if secret := os.Getenv("REFRESH_KEY_SECRET"); secret != "" {
		config.RefreshSecret = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.AccessTokenDuration = d
		}
	}
	if ttl := os.Getenv("REFRESH_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.RefreshTokenDuration = d
		}
	}

	return config
}
