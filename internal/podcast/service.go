package podcast

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

var ErrNotFound = errors.New("podcast not found")

var (
	descriptionPolicy = bluemonday.UGCPolicy()
	titlePolicy       = bluemonday.StrictPolicy()
)

type Input struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
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

func (s *Service) Create(ctx context.Context, in Input, createdBy uint) (*models.Podcast, error) {
	p := &models.Podcast{
		SiteID:      s.siteID,
		Title:       strings.TrimSpace(titlePolicy.Sanitize(in.Title)),
		Description: descriptionPolicy.Sanitize(in.Description),
		Published:   in.Published,
		CreatedBy:   createdBy,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, page, limit int) ([]models.Podcast, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Podcast{}).Where("site_id = ?", s.siteID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var podcasts []models.Podcast
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&podcasts).Error
	return podcasts, total, err
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Podcast, error) {
	var p models.Podcast
	err := s.db.WithContext(ctx).Where("id = ? AND site_id = ?", id, s.siteID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Podcast, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title = strings.TrimSpace(titlePolicy.Sanitize(in.Title))
	p.Description = descriptionPolicy.Sanitize(in.Description)
	p.Published = in.Published
	if err := s.db.WithContext(ctx).Model(p).Select("title", "description", "published", "updated_at").Updates(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the episode and its audio blob when the podcasts bucket owns it.
func (s *Service) Delete(ctx context.Context, id uint) (media.Cleanup, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return media.Cleanup{}, err
	}
	if err := s.db.WithContext(ctx).Delete(p).Error; err != nil {
		return media.Cleanup{}, err
	}
	return s.cleaner.RemoveURL(ctx, s.store, p.AudioURL, "podcast deleted"), nil
}

// ReplaceAudio uploads a new audio file for the episode and cleans up the old one.
func (s *Service) ReplaceAudio(ctx context.Context, id uint, file media.FileInput) (*media.ReplaceResult, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mimeType, _, err := media.Inspect(file, s.maxBytes, models.MediaAudio)
	if err != nil {
		return nil, err
	}

	key := media.SlotKey(fmt.Sprintf("podcast-%d", p.ID), s.now().UnixMilli(), mimeType, file.Filename)
	return s.cleaner.ReplaceOnUpload(ctx, s.store, key, file.Body, mimeType, p.AudioURL, func(newURL string) error {
		return s.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
			"audio_url":      newURL,
			"audio_media_id": nil,
		}).Error
	})
}

// AttachAudio links the episode to an audio file from the library.
func (s *Service) AttachAudio(ctx context.Context, id uint, mediaID string) (*models.Podcast, media.Cleanup, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, media.Cleanup{}, err
	}
	rec, err := s.library.Pick(ctx, models.MediaAudio, mediaID)
	if err != nil {
		return nil, media.Cleanup{}, err
	}

	old := p.AudioURL
	p.AudioURL = rec.URL
	p.AudioMediaID = &rec.ID
	if err := s.db.WithContext(ctx).Model(p).Select("audio_url", "audio_media_id", "updated_at").Updates(p).Error; err != nil {
		return nil, media.Cleanup{}, err
	}

	cleanup := media.Cleanup{Status: media.CleanupSkipped}
	if old != "" && old != rec.URL {
		cleanup = s.cleaner.RemoveURL(ctx, s.store, old, "podcast audio replaced")
	}
	return p, cleanup, nil
}
