package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"diginotes/auth"
	"diginotes/models"
	"diginotes/utils"
)

// UserFinder resolves a token's user id to a live account.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireAuth verifies the bearer token on every request, resolves it to a
// user and attaches that user to the request context. Handlers behind it can
// rely on c.Locals("user") for ownership checks. Missing, malformed, expired
// or orphaned tokens never reach a handler.
func RequireAuth(secret string, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.UnauthorizedError("Please log in to access", nil)
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenString == "" {
			return utils.UnauthorizedError("Please log in to access", nil)
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			return utils.UnauthorizedError("Invalid or expired token", err)
		}

		user, err := users.FindByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return utils.UnauthorizedError("User no longer exists", err)
			}
			return utils.StorageError(err)
		}

		c.Locals("user", user)
		return c.Next()
	}
}
