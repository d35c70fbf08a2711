package media

import (
	"time"

	"github.com/Kyz7/dashboard/internal/models"
)

type UploaderView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FileView is the public projection of a MediaRecord.
type FileView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	OriginalName string           `json:"originalName"`
	URL          string           `json:"url"`
	Size         string           `json:"size"`
	Type         models.MediaType `json:"type"`
	MimeType     string           `json:"mimeType"`
	Path         string           `json:"path"`
	Alt          string           `json:"alt"`
	Width        *int             `json:"width,omitempty"`
	Height       *int             `json:"height,omitempty"`
	UploadedAt   time.Time        `json:"uploadedAt"`
	Uploader     *UploaderView    `json:"uploader,omitempty"`
}

func NewFileView(rec *models.MediaRecord) FileView {
	v := FileView{
		ID:           rec.ID,
		Name:         rec.Name,
		OriginalName: rec.OriginalName,
		URL:          rec.URL,
		Size:         rec.Size,
		Type:         rec.Type,
		MimeType:     rec.MimeType,
		Path:         rec.Path,
		Alt:          rec.Alt,
		Width:        rec.Width,
		Height:       rec.Height,
		UploadedAt:   rec.UploadedAt,
	}
	if rec.Uploader != nil {
		v.Uploader = &UploaderView{ID: rec.Uploader.ID, Name: rec.Uploader.Name, Email: rec.Uploader.Email}
	}
	return v
}

func NewFileViews(records []models.MediaRecord) []FileView {
	out := make([]FileView, 0, len(records))
	for i := range records {
		out = append(out, NewFileView(&records[i]))
	}
	return out
}
