package middleware

import (
	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PermissionProtected loads the caller's current role from the database and
// requires module/action on it. The stored role replaces the one in the token.
func PermissionProtected(db *gorm.DB, module string, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Preload("Role.Permissions").First(&user, principal.ID).Error; err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		if user.Status != "active" {
			return response.Forbidden(c, "Account is not active")
		}

		if user.Role == nil {
			return response.Forbidden(c, "User has no role assigned")
		}

		if !HasPermission(&user, module, action) {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		auth.SetPrincipal(c, auth.Principal{ID: user.ID, Role: user.Role.Name})
		return c.Next()
	}
}

func HasPermission(user *models.User, module, action string) bool {
	if user.Role == nil {
		return false
	}
	if user.Role.Name == models.RoleAdmin {
		return true
	}

	for _, perm := range user.Role.Permissions {
		if perm.Module == module && perm.Action == action {
			return true
		}
	}
	return false
}
