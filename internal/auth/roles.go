package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/domain"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// RequireRole ensures the principal carries one of the allowed roles.
// With no arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin guards the dashboard, ticket creation and the directory.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
