package auth

import (
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID = "user_id"
	localsRole   = "role"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the principal holds the elevated role that may act
// on other users' files.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanManage is the authorization predicate used for move, edit and delete.
func (p Principal) CanManage(ownerID uint) bool {
	return p.ID != 0 && (p.ID == ownerID || p.IsAdmin())
}

func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(localsUserID, p.ID)
	c.Locals(localsRole, p.Role)
}

func CurrentPrincipal(c *fiber.Ctx) (Principal, bool) {
	id, ok := c.Locals(localsUserID).(uint)
	if !ok || id == 0 {
		return Principal{}, false
	}
	role, _ := c.Locals(localsRole).(string)
	return Principal{ID: id, Role: role}, true
}
