package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// LocalUserID is the fiber.Locals key holding the authenticated user id.
const LocalUserID = "user_id"

// UserID returns the authenticated user id stored by RequireAuth.
func UserID(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(LocalUserID).(uint64)
	return id, ok
}

// RequireAuth creates Fiber middleware that authenticates the request by its
// bearer access token. The token authority is the sole source of truth for
// "is this caller authenticated, and as whom"; the boundary layer never
// inspects token internals itself.
func RequireAuth(authority *Authority) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		userID, err := authority.ValidateAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		c.Locals(LocalUserID, userID)

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires the authenticated
// user to hold a specific permission kind on a feature. It must run behind
// RequireAuth. Permissions are resolved fresh on each request so permission
// changes and role revocations take effect immediately.
func RequirePermission(authService *Service, featureCode string, kind models.PermissionKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		projectID := c.Get("X-Project-ID")

		hasPermission, err := authService.HasPermission(userID, projectID, featureCode, kind)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("feature", featureCode).
				Str("kind", string(kind)).Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", userID).Str("feature", featureCode).
				Str("kind", string(kind)).Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}

		return c.Next()
	}
}
