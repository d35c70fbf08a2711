package auth

import (
	"errors"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	tokens *TokenManager
	log    *zap.Logger
}

func NewHandler(db *gorm.DB, tokens *TokenManager, log *zap.Logger) *Handler {
	return &Handler{db: db, tokens: tokens, log: log}
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := response.ParseAndValidate(c, &body); err != nil {
		return nil
	}

	user, err := Authenticate(c.UserContext(), h.db, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return response.Unauthorized(c, "Invalid email or password")
		}
		h.log.Error("login lookup failed", zap.Error(err))
		return response.InternalError(c, "Failed to log in")
	}

	token, err := h.tokens.Generate(user.ID, user.RoleName())
	if err != nil {
		h.log.Error("token signing failed", zap.Error(err), zap.Uint("user_id", user.ID))
		return response.InternalError(c, "Failed to issue token")
	}

	return response.OK(c, fiber.Map{
		"token":     token,
		"expiresIn": int(h.tokens.TTL().Seconds()),
		"user":      user,
	})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).Preload("Role").First(&user, principal.ID).Error; err != nil {
		return response.NotFound(c, "User")
	}

	return response.OK(c, fiber.Map{"user": user})
}
