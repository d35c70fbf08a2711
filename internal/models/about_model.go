package models

import (
	"time"

	"gorm.io/datatypes"
)

type TeamMember struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	PhotoURL string `json:"photoUrl"`
}

// AboutPage holds at most one main image and one photo per team member.
type AboutPage struct {
	ID           uint                            `gorm:"primaryKey" json:"id"`
	SiteID       string                          `gorm:"size:64;uniqueIndex" json:"-"`
	Title        string                          `gorm:"size:255" json:"title"`
	Body         string                          `gorm:"type:text" json:"body"`
	MainImageURL string                          `gorm:"size:500" json:"mainImageUrl"`
	Team         datatypes.JSONSlice[TeamMember] `json:"team"`
	UpdatedAt    time.Time                       `json:"updatedAt"`
}
