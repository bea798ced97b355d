package middleware

import (
	"strings"

	"cofilab-backend/internal/auth"
	"cofilab-backend/internal/domain"
	"cofilab-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userLocal = "user"

// RequireAuth resolves the Authorization bearer token to a user and stores it
// in Locals. Returns 401 with the standard error format otherwise.
func RequireAuth(tokens *auth.TokenStore, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return response.Unauthorized(c, "Unauthorized")
		}

		userID, err := tokens.Resolve(c.Context(), token)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		var u domain.User
		if err := db.First(&u, userID).Error; err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(userLocal, &u)
		return c.Next()
	}
}

// GetUser returns the authenticated user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(userLocal).(*domain.User)
	return u
}
