package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/user-auth-service/modules/auth"
	"github.com/example/user-auth-service/modules/files"
	"github.com/gofiber/fiber/v2"
)

// mockAuthPort implements auth.AuthPort for handler tests. Unset functions
// fail loudly so a test only exercises the calls it expects.
type mockAuthPort struct {
	registerFunc      func(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error)
	loginFunc         func(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error)
	refreshFunc       func(ctx context.Context, refreshToken string) (*auth.RefreshResponse, error)
	logoutFunc        func(ctx context.Context, refreshToken string) error
	validateTokenFunc func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error)
	listUsersFunc     func(ctx context.Context) (*auth.ListUsersResponse, error)
	getUserFunc       func(ctx context.Context, id string) (*auth.UserRecord, error)
	updateUserFunc    func(ctx context.Context, req auth.UpdateUserRequest) (*auth.UserRecord, error)
	deleteUserFunc    func(ctx context.Context, id string) error
}

var _ auth.AuthPort = (*mockAuthPort)(nil)

func (m *mockAuthPort) Register(ctx context.Context, req auth.RegisterRequest) (*auth.SessionResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil, errors.New("unexpected Register call")
}

func (m *mockAuthPort) Login(ctx context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return nil, errors.New("unexpected Login call")
}

func (m *mockAuthPort) Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResponse, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return nil, errors.New("unexpected Refresh call")
}

func (m *mockAuthPort) Logout(ctx context.Context, refreshToken string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, refreshToken)
	}
	return errors.New("unexpected Logout call")
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errors.New("unexpected ValidateToken call")
}

func (m *mockAuthPort) ListUsers(ctx context.Context) (*auth.ListUsersResponse, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx)
	}
	return nil, errors.New("unexpected ListUsers call")
}

func (m *mockAuthPort) GetUser(ctx context.Context, id string) (*auth.UserRecord, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, errors.New("unexpected GetUser call")
}

func (m *mockAuthPort) UpdateUser(ctx context.Context, req auth.UpdateUserRequest) (*auth.UserRecord, error) {
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, req)
	}
	return nil, errors.New("unexpected UpdateUser call")
}

func (m *mockAuthPort) DeleteUser(ctx context.Context, id string) error {
	if m.deleteUserFunc != nil {
		return m.deleteUserFunc(ctx, id)
	}
	return errors.New("unexpected DeleteUser call")
}

// mockFilesPort implements files.FilesPort for handler tests.
type mockFilesPort struct {
	uploadFileFunc func(ctx context.Context, fileName string, data []byte, contentType string) (*files.UploadResponse, error)
	getFileFunc    func(ctx context.Context, id string) (*files.GetFileResponse, error)
}

var _ files.FilesPort = (*mockFilesPort)(nil)

func (m *mockFilesPort) UploadFile(ctx context.Context, fileName string, data []byte, contentType string) (*files.UploadResponse, error) {
	if m.uploadFileFunc != nil {
		return m.uploadFileFunc(ctx, fileName, data, contentType)
	}
	return nil, errors.New("unexpected UploadFile call")
}

func (m *mockFilesPort) GetFile(ctx context.Context, id string) (*files.GetFileResponse, error) {
	if m.getFileFunc != nil {
		return m.getFileFunc(ctx, id)
	}
	return nil, errors.New("unexpected GetFile call")
}

func validTokenMock(claims auth.ClaimsRecord) *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
			return &auth.ValidateTokenResponse{
				Valid:    true,
				ID:       claims.ID,
				Username: claims.Username,
				Name:     claims.Name,
				Division: claims.Division,
			}, nil
		},
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockAuth       *mockAuthPort
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			mockAuth:       &mockAuthPort{},
			expectedStatus: http.StatusForbidden,
			expectedBody:   "No token provided",
		},
		{
			name:       "invalid token",
			authHeader: "Bearer invalid-token",
			mockAuth: &mockAuthPort{
				validateTokenFunc: func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
					return &auth.ValidateTokenResponse{Valid: false, Error: "invalid token"}, nil
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized: invalid or expired token",
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired-token",
			mockAuth: &mockAuthPort{
				validateTokenFunc: func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
					return &auth.ValidateTokenResponse{Valid: false, Error: "token expired"}, nil
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized: invalid or expired token",
		},
		{
			name:       "validation transport failure",
			authHeader: "Bearer some-token",
			mockAuth: &mockAuthPort{
				validateTokenFunc: func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
					return nil, errors.New("validate-token request failed")
				},
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized: invalid or expired token",
		},
		{
			name:           "valid bearer token",
			authHeader:     "Bearer valid-token",
			mockAuth:       validTokenMock(auth.ClaimsRecord{ID: "user-123", Username: "alice"}),
			expectedStatus: http.StatusOK,
			expectedBody:   "authenticated",
		},
		{
			name:           "raw token without bearer prefix",
			authHeader:     "valid-token",
			mockAuth:       validTokenMock(auth.ClaimsRecord{ID: "user-123", Username: "alice"}),
			expectedStatus: http.StatusOK,
			expectedBody:   "authenticated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(AuthMiddleware(tt.mockAuth))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"status": "authenticated"})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %v, want to contain %v", string(body), tt.expectedBody)
			}
		})
	}
}

func TestAuthMiddleware_StripsBearerPrefix(t *testing.T) {
	var seenToken string
	mockAuth := &mockAuthPort{
		validateTokenFunc: func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
			seenToken = token
			return &auth.ValidateTokenResponse{Valid: true}, nil
		},
	}

	app := fiber.New()
	app.Use(AuthMiddleware(mockAuth))
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer the-raw-token")

	if _, err := app.Test(req, -1); err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if seenToken != "the-raw-token" {
		t.Errorf("validated token = %q, want %q", seenToken, "the-raw-token")
	}
}

func TestAuthMiddleware_UserContext(t *testing.T) {
	mockAuth := validTokenMock(auth.ClaimsRecord{
		ID:       "user-456",
		Username: "bob",
		Name:     "Bob",
		Division: "ops",
	})

	app := fiber.New()
	app.Use(AuthMiddleware(mockAuth))

	var captured auth.ClaimsRecord
	var ok bool
	app.Get("/test", func(c *fiber.Ctx) error {
		captured, ok = c.Locals(UserContextKey).(auth.ClaimsRecord)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	if !ok {
		t.Fatal("claims not stored in request context")
	}
	if captured.ID != "user-456" || captured.Username != "bob" || captured.Division != "ops" {
		t.Errorf("claims = %+v, want user-456/bob/ops", captured)
	}
}
