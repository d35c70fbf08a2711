package user

import (
	"errors"
	"fmt"

	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/role"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func CreateUser(db *gorm.DB, name, email, password, roleName string) (*models.User, error) {
	r, err := role.FindByName(db, roleName)
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", roleName, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Status:   "active",
		RoleID:   r.ID,
	}
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	u.Role = r
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func EnsureAdmin(db *gorm.DB, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		log.Info("bootstrap admin not configured, skipping")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := CreateUser(db, "Administrator", email, password, models.RoleAdmin); err != nil {
		return err
	}
	log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
