package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "github.com/example/user-auth-service/domain/user"
	"github.com/example/user-auth-service/modules/cache"
	"github.com/google/uuid"
)

var (
	// ErrMissingCredentials is returned when username or password is absent.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidPassword is returned when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrNoRefreshToken is returned when no refresh token was presented, or
	// the presented value matches no stored token.
	ErrNoRefreshToken = errors.New("refresh token not provided")
	// ErrRefreshTokenNotFound is returned by logout when the presented token
	// matches no user.
	ErrRefreshTokenNotFound = errors.New("refresh token not recognized")
	// ErrRefreshTokenInvalid is returned when a matched refresh token fails
	// signature or expiry verification.
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
)

const (
	cacheKeyAllUsers = "all"
)

// SessionService orchestrates the session lifecycle: registration, login,
// token refresh and logout. It enforces the single-active-refresh-token
// invariant by overwriting the stored token on every register and login.
type SessionService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
	cache  *cache.Cache
}

// NewSessionService creates a new SessionService.
func NewSessionService(repo *UserRepository, hasher *PasswordHasher, tokens *TokenManager) *SessionService {
	return &SessionService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// SetCache wires an optional Redis cache into the user read path.
func (s *SessionService) SetCache(c *cache.Cache) {
	s.cache = c
}

// Register creates a new user account and starts a session for it.
func (s *SessionService) Register(ctx context.Context, username, password, name, division string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	exists, err := s.repo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Division:     division,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	s.invalidateUserCache(ctx, user.ID)

	return s.startSession(user)
}

// Login authenticates a user and starts a new session. A previously issued
// refresh token for the same user is implicitly superseded.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return s.startSession(user)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated. Lookup is by stored value, so a
// structurally valid token that matches no record fails the same way as a
// missing one.
func (s *SessionService) Refresh(_ context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	user, err := s.repo.FindByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrNoRefreshToken
		}
		return "", err
	}

	if _, err := s.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return "", ErrRefreshTokenInvalid
	}

	accessToken, err := s.tokens.IssueAccessToken(domain.ClaimsFrom(user))
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return accessToken, nil
}

// Logout clears the stored refresh token for the matching user, returning
// the session to the anonymous state.
func (s *SessionService) Logout(_ context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	user, err := s.repo.FindByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrRefreshTokenNotFound
		}
		return err
	}

	return s.repo.SetRefreshToken(user.ID, "")
}

// VerifyAccess validates an access token and returns its claims.
func (s *SessionService) VerifyAccess(tokenString string) (domain.Claims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return domain.Claims{}, err
	}
	return claims.UserClaims(), nil
}

// ListUsers returns all user records, served from the cache when possible.
func (s *SessionService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if s.cache != nil {
		var cached []*domain.User
		if hit, err := s.cache.Get(ctx, cacheKeyAllUsers, &cached); err == nil && hit {
			return cached, nil
		}
	}

	users, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyAllUsers, users); err != nil {
			log.Printf("[auth] Failed to cache user list: %v", err)
		}
	}
	return users, nil
}

// GetUser retrieves a user by ID, served from the cache when possible.
func (s *SessionService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if s.cache != nil {
		var cached domain.User
		if hit, err := s.cache.Get(ctx, id, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, user); err != nil {
			log.Printf("[auth] Failed to cache user %s: %v", id, err)
		}
	}
	return user, nil
}

// UpdateUser changes profile fields of an existing user. Nil fields are
// left untouched.
func (s *SessionService) UpdateUser(ctx context.Context, id string, name, division, pictureURL *string) (*domain.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		user.Name = *name
	}
	if division != nil {
		user.Division = *division
	}
	if pictureURL != nil {
		user.ProfilePictureURL = *pictureURL
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}

	s.invalidateUserCache(ctx, id)
	return user, nil
}

// DeleteUser removes a user record.
func (s *SessionService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateUserCache(ctx, id)
	return nil
}

// startSession issues a token pair for the user and persists the refresh
// token, superseding any previous one.
func (s *SessionService) startSession(user *domain.User) (*domain.Session, error) {
	claims := domain.ClaimsFrom(user)

	accessToken, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.repo.SetRefreshToken(user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         claims,
	}, nil
}

func (s *SessionService) invalidateUserCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyAllUsers); err != nil {
		log.Printf("[auth] Failed to invalidate user list cache: %v", err)
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Printf("[auth] Failed to invalidate cache for user %s: %v", id, err)
	}
}
