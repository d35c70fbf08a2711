// Package about manages the single about page of a site: its text, main image
// and team member photos.
package about

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/storage"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("team member not found")

var (
	bodyPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func plain(s string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}

type Service struct {
	db       *gorm.DB
	store    storage.BlobStore
	library  *media.Service
	cleaner  *media.Cleaner
	log      *zap.Logger
	siteID   string
	maxBytes int64
	now      func() time.Time
}

func NewService(db *gorm.DB, store storage.BlobStore, library *media.Service, cleaner *media.Cleaner, log *zap.Logger, siteID string, maxBytes int64) *Service {
	return &Service{
		db:       db,
		store:    store,
		library:  library,
		cleaner:  cleaner,
		log:      log,
		siteID:   siteID,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Get returns the site's about page, creating an empty one on first access.
func (s *Service) Get(ctx context.Context) (*models.AboutPage, error) {
	var page models.AboutPage
	err := s.db.WithContext(ctx).
		Where(models.AboutPage{SiteID: s.siteID}).
		Attrs(models.AboutPage{Team: []models.TeamMember{}}).
		FirstOrCreate(&page).Error
	if err != nil {
		return nil, err
	}
	if page.Team == nil {
		page.Team = []models.TeamMember{}
	}
	return &page, nil
}

func (s *Service) UpdateText(ctx context.Context, title, body string) (*models.AboutPage, error) {
	page, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	page.Title = plain(title)
	page.Body = bodyPolicy.Sanitize(body)
	if err := s.db.WithContext(ctx).Model(page).Select("title", "body", "updated_at").Updates(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Service) AddMember(ctx context.Context, name, position string) (*models.AboutPage, error) {
	page, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	page.Team = append(page.Team, models.TeamMember{Name: plain(name), Position: plain(position)})
	if err := s.saveTeam(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// RemoveMember drops the member at index and removes their photo if it lives
// in the about bucket. Library files attached through the picker are left alone.
func (s *Service) RemoveMember(ctx context.Context, index int) (*models.AboutPage, media.Cleanup, error) {
	page, err := s.Get(ctx)
	if err != nil {
		return nil, media.Cleanup{}, err
	}
	if index < 0 || index >= len(page.Team) {
		return nil, media.Cleanup{}, ErrMemberNotFound
	}

	photo := page.Team[index].PhotoURL
	page.Team = append(page.Team[:index], page.Team[index+1:]...)
	if err := s.saveTeam(ctx, page); err != nil {
		return nil, media.Cleanup{}, err
	}

	cleanup := s.cleaner.RemoveURL(ctx, s.store, photo, "team member removed")
	return page, cleanup, nil
}

// ReplaceMainImage uploads a new main image, saves it on the page and then
// removes the previous one.
func (s *Service) ReplaceMainImage(ctx context.Context, file media.FileInput) (*media.ReplaceResult, error) {
	mimeType, err := s.inspect(file)
	if err != nil {
		return nil, err
	}
	page, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	key := media.SlotKey("about-main", s.now().UnixMilli(), mimeType, file.Filename)
	return s.cleaner.ReplaceOnUpload(ctx, s.store, key, file.Body, mimeType, page.MainImageURL, func(newURL string) error {
		return s.db.WithContext(ctx).Model(page).Update("main_image_url", newURL).Error
	})
}

// ReplaceMemberPhoto is ReplaceMainImage for one team member slot.
func (s *Service) ReplaceMemberPhoto(ctx context.Context, index int, file media.FileInput) (*media.ReplaceResult, error) {
	page, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(page.Team) {
		return nil, ErrMemberNotFound
	}
	mimeType, err := s.inspect(file)
	if err != nil {
		return nil, err
	}

	key := media.SlotKey(fmt.Sprintf("team-%d", index), s.now().UnixMilli(), mimeType, file.Filename)
	return s.cleaner.ReplaceOnUpload(ctx, s.store, key, file.Body, mimeType, page.Team[index].PhotoURL, func(newURL string) error {
		page.Team[index].PhotoURL = newURL
		return s.saveTeam(ctx, page)
	})
}

// AttachMemberPhoto points a team member at an existing library image. The
// previous photo is removed only if the about bucket owns it.
func (s *Service) AttachMemberPhoto(ctx context.Context, index int, mediaID string) (*models.AboutPage, media.Cleanup, error) {
	rec, err := s.library.Pick(ctx, models.MediaImage, mediaID)
	if err != nil {
		return nil, media.Cleanup{}, err
	}

	page, err := s.Get(ctx)
	if err != nil {
		return nil, media.Cleanup{}, err
	}
	if index < 0 || index >= len(page.Team) {
		return nil, media.Cleanup{}, ErrMemberNotFound
	}

	old := page.Team[index].PhotoURL
	page.Team[index].PhotoURL = rec.URL
	if err := s.saveTeam(ctx, page); err != nil {
		return nil, media.Cleanup{}, err
	}

	cleanup := media.Cleanup{Status: media.CleanupSkipped}
	if old != "" && old != rec.URL {
		cleanup = s.cleaner.RemoveURL(ctx, s.store, old, "team photo replaced")
	}
	return page, cleanup, nil
}

func (s *Service) inspect(file media.FileInput) (string, error) {
	mimeType, _, err := media.Inspect(file, s.maxBytes, models.MediaImage)
	return mimeType, err
}

func (s *Service) saveTeam(ctx context.Context, page *models.AboutPage) error {
	return s.db.WithContext(ctx).Model(page).Update("team", page.Team).Error
}
