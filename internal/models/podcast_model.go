package models

import "time"

type Podcast struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SiteID       string    `gorm:"size:64;index" json:"-"`
	Title        string    `gorm:"size:255" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	AudioURL     string    `gorm:"size:500" json:"audioUrl"`
	AudioMediaID *string   `gorm:"size:36" json:"audioMediaId,omitempty"`
	Published    bool      `json:"published"`
	CreatedBy    uint      `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
