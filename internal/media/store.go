package media

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Kyz7/dashboard/internal/models"
	"gorm.io/gorm"
)

// Filter narrows a record listing. An empty Path means no path filter; "/" is
// a real path and matches root-stored files only.
type Filter struct {
	SiteID string
	Path   string
	Type   models.MediaType
	Search string
	Offset int
	Limit  int
}

type TypeStats struct {
	Count int64 `json:"count"`
	Bytes int64 `json:"bytes"`
}

type Stats struct {
	TotalFiles  int64                          `json:"totalFiles"`
	TotalBytes  int64                          `json:"totalBytes"`
	TotalSize   string                         `json:"totalSize"`
	ByType      map[models.MediaType]TypeStats `json:"byType"`
	RecentFiles int64                          `json:"recentUploads"`
}

// RecordStore is the relational side of the library.
type RecordStore interface {
	Create(ctx context.Context, rec *models.MediaRecord) error
	Get(ctx context.Context, siteID, id string) (*models.MediaRecord, error)
	List(ctx context.Context, f Filter) ([]models.MediaRecord, int64, error)
	UpdatePath(ctx context.Context, siteID, id, path string) error
	UpdateAlt(ctx context.Context, siteID, id, alt string) error
	Delete(ctx context.Context, siteID, id string) error
	Stats(ctx context.Context, siteID string, since time.Time) (*Stats, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func preloadUploader(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (s *GormStore) Create(ctx context.Context, rec *models.MediaRecord) error {
	return s.db.WithContext(ctx).Omit("Uploader").Create(rec).Error
}

func (s *GormStore) Get(ctx context.Context, siteID, id string) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	err := s.db.WithContext(ctx).
		Preload("Uploader", preloadUploader).
		Where("id = ? AND site_id = ?", id, siteID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]models.MediaRecord, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.MediaRecord{}).Where("site_id = ?", f.SiteID)

	if f.Path != "" {
		query = query.Where("path = ?", f.Path)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(original_name) LIKE ? OR LOWER(alt) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.MediaRecord
	err := query.
		Preload("Uploader", preloadUploader).
		Order("uploaded_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *GormStore) UpdatePath(ctx context.Context, siteID, id, path string) error {
	return s.updateColumn(ctx, siteID, id, "path", path)
}

func (s *GormStore) UpdateAlt(ctx context.Context, siteID, id, alt string) error {
	return s.updateColumn(ctx, siteID, id, "alt", alt)
}

func (s *GormStore) updateColumn(ctx context.Context, siteID, id, column, value string) error {
	result := s.db.WithContext(ctx).Model(&models.MediaRecord{}).
		Where("id = ? AND site_id = ?", id, siteID).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, siteID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND site_id = ?", id, siteID).
		Delete(&models.MediaRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Stats(ctx context.Context, siteID string, since time.Time) (*Stats, error) {
	var rows []struct {
		Type  models.MediaType
		Count int64
		Bytes int64
	}
	err := s.db.WithContext(ctx).Model(&models.MediaRecord{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(bytes), 0) AS bytes").
		Where("site_id = ?", siteID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByType: map[models.MediaType]TypeStats{}}
	for _, t := range typeOrder {
		stats.ByType[t] = TypeStats{}
	}
	for _, r := range rows {
		stats.ByType[r.Type] = TypeStats{Count: r.Count, Bytes: r.Bytes}
		stats.TotalFiles += r.Count
		stats.TotalBytes += r.Bytes
	}
	stats.TotalSize = FormatSize(stats.TotalBytes)

	err = s.db.WithContext(ctx).Model(&models.MediaRecord{}).
		Where("site_id = ? AND uploaded_at >= ?", siteID, since).
		Count(&stats.RecentFiles).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
