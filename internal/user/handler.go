package user

import (
	"errors"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required"`
	}
	if err := response.ParseAndValidate(c, &body); err != nil {
		return nil
	}

	var existing models.User
	if err := h.db.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	u, err := CreateUser(h.db, body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Role")
		}
		h.log.Error("create user failed", zap.Error(err))
		return response.InternalError(c, "Failed to create user")
	}

	return response.Created(c, fiber.Map{"user": u})
}

func (h *Handler) List(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.Preload("Role").Order("id").Find(&users).Error; err != nil {
		h.log.Error("list users failed", zap.Error(err))
		return response.InternalError(c, "Failed to fetch users")
	}

	return response.OK(c, fiber.Map{"users": users})
}
