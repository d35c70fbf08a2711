package role

import (
	"fmt"

	"github.com/Kyz7/dashboard/internal/models"
	"gorm.io/gorm"
)

type grant struct {
	module  string
	actions []string
}

var crud = []string{"create", "read", "update", "delete"}

// DefaultRoles is the role catalogue seeded on boot. Editors may delete media,
// ownership of the record is checked separately.
var DefaultRoles = map[string]struct {
	description string
	grants      []grant
}{
	models.RoleAdmin: {
		description: "Full access to all resources",
		grants: []grant{
			{"Media", crud}, {"About", crud}, {"Podcast", crud}, {"User", crud},
		},
	},
	"editor": {
		description: "Can upload and manage own media, edit pages and podcasts",
		grants: []grant{
			{"Media", crud}, {"About", []string{"read", "update"}}, {"Podcast", crud},
		},
	},
	"viewer": {
		description: "Read-only access",
		grants: []grant{
			{"Media", []string{"read"}}, {"About", []string{"read"}}, {"Podcast", []string{"read"}},
		},
	},
}

// SeedDefaultRoles creates missing roles and permissions. It is idempotent.
func SeedDefaultRoles(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for name, def := range DefaultRoles {
			role := models.Role{Name: name}
			if err := tx.Where(models.Role{Name: name}).
				Attrs(models.Role{Description: def.description}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}

			for _, g := range def.grants {
				for _, action := range g.actions {
					perm := models.Permission{RoleID: role.ID, Module: g.module, Action: action}
					if err := tx.Where(perm).FirstOrCreate(&perm).Error; err != nil {
						return fmt.Errorf("seed permission %s.%s for %s: %w", g.module, action, name, err)
					}
				}
			}
		}
		return nil
	})
}

func FindByName(db *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
