package api

import (
	"io"
	"log"
	"strings"
	"time"

	"github.com/example/user-auth-service/modules/auth"
	"github.com/example/user-auth-service/modules/files"
	"github.com/gofiber/fiber/v2"
)

const refreshCookieName = "refresh_token"

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	authPort  auth.AuthPort
	filesPort files.FilesPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, filesPort files.FilesPort) *Handlers {
	return &Handlers{
		authPort:  authPort,
		filesPort: filesPort,
	}
}

// Register handles user registration. On success the refresh token is set
// as an http-only cookie and the access token returned in the body.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	resp, err := h.authPort.Register(c.UserContext(), auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Division: req.Division,
	})
	if err != nil {
		return h.handleAuthError(c, err)
	}

	setRefreshCookie(c, resp.RefreshToken, int(resp.RefreshMaxAge))

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Status:      "success",
		Message:     "User created successfully",
		AccessToken: resp.AccessToken,
		User:        resp.User,
	})
}

// Login handles user login with the same token issuance as registration.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	resp, err := h.authPort.Login(c.UserContext(), auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return h.handleAuthError(c, err)
	}

	setRefreshCookie(c, resp.RefreshToken, int(resp.RefreshMaxAge))

	return c.Status(fiber.StatusOK).JSON(SessionResponse{
		Status:      "success",
		Message:     "Login successful",
		AccessToken: resp.AccessToken,
		User:        resp.User,
	})
}

// Token exchanges the refresh cookie for a new access token. The refresh
// token is not rotated here.
func (h *Handlers) Token(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Status:  "error",
			Message: "No refresh token provided",
		})
	}

	resp, err := h.authPort.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "invalid refresh token") {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Status:  "error",
				Message: "Refresh token is invalid",
			})
		}
		if strings.Contains(errStr, "refresh token not provided") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Status:  "error",
				Message: "No refresh token provided",
			})
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		Status:      "success",
		Message:     "Successfully issued new access token",
		AccessToken: resp.AccessToken,
	})
}

// Logout clears the stored refresh token and the cookie. The cookie is
// cleared even when the token matches no user.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return badRequest(c, "No refresh token provided")
	}

	if err := h.authPort.Logout(c.UserContext(), refreshToken); err != nil {
		clearRefreshCookie(c)
		if strings.Contains(err.Error(), "refresh token not recognized") {
			return badRequest(c, "Invalid refresh token")
		}
		return internalError(c, err)
	}

	clearRefreshCookie(c)

	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Status:  "success",
		Message: "Logged out successfully",
	})
}

// ListUsers returns all users.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	resp, err := h.authPort.ListUsers(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UsersResponse{
		Status:  "success",
		Message: "Successfully get all users",
		Data:    resp.Users,
	})
}

// GetUser returns a single user by ID.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id := c.Params("id")

	user, err := h.authPort.GetUser(c.UserContext(), id)
	if err != nil {
		if strings.Contains(err.Error(), "user not found") {
			return badRequest(c, "User with id "+id+" not found")
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UserResponse{
		Status:  "success",
		Message: "Successfully get user",
		User:    *user,
	})
}

// UpdateUser updates a user's name and division, and optionally stores a
// new profile picture sent as a multipart file.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	update := auth.UpdateUserRequest{
		ID:       id,
		Name:     req.Name,
		Division: req.Division,
	}

	if fileHeader, err := c.FormFile("profilePicture"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "Failed to read uploaded file")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return badRequest(c, "Failed to read uploaded file")
		}

		uploaded, err := h.filesPort.UploadFile(
			c.UserContext(),
			fileHeader.Filename,
			data,
			fileHeader.Header.Get("Content-Type"),
		)
		if err != nil {
			log.Printf("[api] Profile picture upload failed: %v", err)
			return internalError(c, err)
		}
		update.ProfilePictureURL = &uploaded.URL
	}

	user, err := h.authPort.UpdateUser(c.UserContext(), update)
	if err != nil {
		if strings.Contains(err.Error(), "user not found") {
			return badRequest(c, "User with id "+id+" not found")
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UserResponse{
		Status:  "success",
		Message: "Successfully update user",
		User:    *user,
	})
}

// DeleteUser removes a user by ID.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.authPort.DeleteUser(c.UserContext(), id); err != nil {
		if strings.Contains(err.Error(), "user not found") {
			return badRequest(c, "User with id "+id+" not found")
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Status:  "success",
		Message: "Successfully delete user",
	})
}

// GetFile serves a stored profile picture.
func (h *Handlers) GetFile(c *fiber.Ctx) error {
	id := c.Params("id")

	resp, err := h.filesPort.GetFile(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "File not found",
		})
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	return c.Send(resp.Data)
}

// handleAuthError maps session errors to status codes. Errors flatten to
// strings across the service container, so matching is by message.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "username and password are required"):
		return badRequest(c, "Username and password are required")
	case strings.Contains(errStr, "user already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Status:  "error",
			Message: "User already exists",
		})
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Status:  "error",
			Message: "User not found",
		})
	case strings.Contains(errStr, "invalid password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Status:  "error",
			Message: "Invalid password",
		})
	default:
		return internalError(c, err)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Status:  "error",
		Message: message,
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Status:  "error",
		Message: "Internal server error",
	})
}

// setRefreshCookie attaches the refresh token as an http-only, secure,
// cross-site cookie.
func setRefreshCookie(c *fiber.Ctx, token string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// clearRefreshCookie expires the refresh cookie with the same attributes
// it was set with.
func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
