package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType is decided once at upload time and never re-derived from the MIME string.
type MediaType string

const (
	MediaImage    MediaType = "IMAGE"
	MediaAudio    MediaType = "AUDIO"
	MediaVideo    MediaType = "VIDEO"
	MediaDocument MediaType = "DOCUMENT"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaAudio, MediaVideo, MediaDocument:
		return true
	}
	return false
}

// MediaRecord is one uploaded file. Path is a logical folder tag and is
// independent of the blob key behind URL.
type MediaRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SiteID       string    `gorm:"size:64;index:idx_media_site_path" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	OriginalName string    `gorm:"size:255" json:"originalName"`
	Type         MediaType `gorm:"size:16;index" json:"type"`
	MimeType     string    `gorm:"size:100" json:"mimeType"`
	URL          string    `gorm:"size:500" json:"url"`
	Bucket       string    `gorm:"size:100" json:"-"`
	Size         string    `gorm:"size:32" json:"size"`
	Bytes        int64     `json:"bytes"`
	Width        *int      `json:"width,omitempty"`
	Height       *int      `json:"height,omitempty"`
	Path         string    `gorm:"size:255;index:idx_media_site_path" json:"path"`
	Alt          string    `gorm:"size:255" json:"alt"`
	UploaderID   uint      `gorm:"index" json:"uploaderId"`
	Uploader     *User     `gorm:"foreignKey:UploaderID" json:"-"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (m *MediaRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// OrphanBlob is a blob whose removal failed and is waiting for the reconciler.
type OrphanBlob struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Bucket    string    `gorm:"size:100;index:idx_orphan_bucket_key" json:"bucket"`
	Key       string    `gorm:"size:500;index:idx_orphan_bucket_key" json:"key"`
	Reason    string    `gorm:"size:255" json:"reason"`
	Attempts  int       `json:"attempts"`
	LastError string    `gorm:"type:text" json:"lastError"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
