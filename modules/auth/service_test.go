package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/user-auth-service/domain/user"
)

func setupTestService(t *testing.T, config TokenConfig) *SessionService {
	t.Helper()

	db := setupTestDB(t)
	repo := NewUserRepository(db)
	return NewSessionService(repo, NewPasswordHasher(), NewTokenManager(config))
}

func TestSessionService_RegisterIssuesMatchingClaims(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// The access token must decode to the same claims returned as the user
	claims, err := svc.VerifyAccess(session.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims != session.User {
		t.Errorf("token claims = %+v, want %+v", claims, session.User)
	}
	if claims.Username != "alice" || claims.Name != "Alice" || claims.Division != "eng" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestSessionService_RegisterMissingCredentials(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"missing username", "", "pw"},
		{"missing password", "alice", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password, "", "")
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("Register() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestSessionService_RegisterDuplicateUsername(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "Alice", "eng"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "alice", "other", "Other Alice", "ops")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Register() duplicate error = %v, want ErrUserExists", err)
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("store holds %d records, want exactly 1", len(users))
	}
}

func TestSessionService_LoginFailureOrder(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "Alice", "eng"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, "", "pw"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Login() missing username error = %v, want ErrMissingCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Login() unknown user error = %v, want ErrUserNotFound", err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidPassword", err)
	}
}

func TestSessionService_FailedLoginLeavesSessionIntact(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("Login() error = %v, want ErrInvalidPassword", err)
	}

	// The refresh token issued at registration must still be honored
	if _, err := svc.Refresh(ctx, session.RefreshToken); err != nil {
		t.Errorf("Refresh() after failed login error = %v", err)
	}
}

func TestSessionService_NewLoginSupersedesRefreshToken(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	second, err := svc.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("second login should issue a new refresh token")
	}

	// The superseded token matches no stored record anymore
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh(old token) error = %v, want ErrNoRefreshToken", err)
	}

	// The current one still works
	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Errorf("Refresh(current token) error = %v", err)
	}
}

func TestSessionService_RefreshIssuesNewAccessToken(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	accessToken, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if accessToken == session.AccessToken {
		t.Error("Refresh() should mint a new access token")
	}

	claims, err := svc.VerifyAccess(accessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims != session.User {
		t.Errorf("refreshed token claims = %+v, want %+v", claims, session.User)
	}
}

func TestSessionService_RefreshFailures(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh(\"\") error = %v, want ErrNoRefreshToken", err)
	}

	// A structurally valid but unmatched token behaves like a missing one
	other := NewTokenManager(testTokenConfig())
	stray, err := other.IssueRefreshToken(testClaims())
	if err != nil {
		t.Fatalf("IssueRefreshToken() error = %v", err)
	}
	if _, err := svc.Refresh(ctx, stray); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh(unmatched) error = %v, want ErrNoRefreshToken", err)
	}
}

func TestSessionService_RefreshExpiredToken(t *testing.T) {
	config := testTokenConfig()
	config.RefreshTokenDuration = 1 * time.Millisecond
	svc := setupTestService(t, config)
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	// The stored value still matches, so the failure is verification
	_, err = svc.Refresh(ctx, session.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("Refresh(expired) error = %v, want ErrRefreshTokenInvalid", err)
	}
}

func TestSessionService_LogoutClearsSession(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(ctx, session.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	// The cleared token must no longer be exchangeable
	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh() after logout error = %v, want ErrNoRefreshToken", err)
	}
}

func TestSessionService_LogoutFailures(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	if err := svc.Logout(ctx, ""); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Logout(\"\") error = %v, want ErrNoRefreshToken", err)
	}
	if err := svc.Logout(ctx, "unknown-token"); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("Logout(unknown) error = %v, want ErrRefreshTokenNotFound", err)
	}
}

func TestSessionService_FullLifecycle(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	// register -> refresh -> logout -> refresh
	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	renewed, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if renewed == session.AccessToken {
		t.Error("renewed access token should differ from the original")
	}

	if err := svc.Logout(ctx, session.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("Refresh() after logout error = %v, want ErrNoRefreshToken", err)
	}
}

func TestSessionService_UserCRUD(t *testing.T) {
	svc := setupTestService(t, testTokenConfig())
	ctx := context.Background()

	session, err := svc.Register(ctx, "alice", "pw", "Alice", "eng")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	id := session.User.UserID

	got, err := svc.GetUser(ctx, id)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want alice", got.Username)
	}

	name := "Alice Cooper"
	pic := "/files/abc"
	updated, err := svc.UpdateUser(ctx, id, &name, nil, &pic)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != name || updated.Division != "eng" {
		t.Errorf("updated = %q/%q, want %q/eng (division untouched)", updated.Name, updated.Division, name)
	}
	if updated.ProfilePictureURL != pic {
		t.Errorf("ProfilePictureURL = %q, want %q", updated.ProfilePictureURL, pic)
	}

	if err := svc.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := svc.GetUser(ctx, id); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser() after delete error = %v, want ErrUserNotFound", err)
	}
}

func TestSessionService_PasswordsAreHashed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	svc := NewSessionService(repo, NewPasswordHasher(), NewTokenManager(testTokenConfig()))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "Alice", "eng"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if stored.PasswordHash == "pw" {
		t.Error("password must not be stored in plaintext")
	}

	// Claims derived from the record never carry the hash
	if domain.ClaimsFrom(stored) != (domain.Claims{
		UserID:   stored.ID,
		Username: "alice",
		Name:     "Alice",
		Division: "eng",
	}) {
		t.Error("claims should carry only id, username, name and division")
	}
}
