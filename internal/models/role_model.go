package models

import (
	"time"

	"gorm.io/gorm"
)

const RoleAdmin = "admin"

type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex" json:"name"`
	Description string         `json:"description"`
	Permissions []Permission   `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Permission grants one action ("create", "read", "update", "delete") on a module
// ("Media", "About", "Podcast", "User").
type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoleID    uint      `gorm:"index:idx_role_module_action" json:"roleId"`
	Module    string    `gorm:"size:50;index:idx_role_module_action" json:"module"`
	Action    string    `gorm:"size:50;index:idx_role_module_action" json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}
