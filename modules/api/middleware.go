package api

import (
	"strings"

	"github.com/example/user-auth-service/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware gates protected routes on a valid access token. A missing
// Authorization header is a 403; a present but invalid or expired token is
// a 401. A header without the Bearer prefix is treated as the raw token.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Status:  "error",
				Message: "No token provided",
			})
		}

		token := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		resp, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil || !resp.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Status:  "error",
				Message: "Unauthorized: invalid or expired token",
			})
		}

		c.Locals(UserContextKey, auth.ClaimsRecord{
			ID:       resp.ID,
			Username: resp.Username,
			Name:     resp.Name,
			Division: resp.Division,
		})

		return c.Next()
	}
}
