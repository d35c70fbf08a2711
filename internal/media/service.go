package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/storage"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(input string) string {
	return strings.TrimSpace(textPolicy.Sanitize(input))
}

type Options struct {
	SiteID          string
	MaxUploadBytes  int64
	BulkConcurrency int
}

// Service coordinates the record store and the media bucket.
type Service struct {
	records  RecordStore
	store    storage.BlobStore
	cleaner  *Cleaner
	resolver *Resolver
	log      *zap.Logger
	opts     Options
	now      func() time.Time
}

func NewService(records RecordStore, store storage.BlobStore, cleaner *Cleaner, catalogue *Catalogue, log *zap.Logger, opts Options) *Service {
	if opts.BulkConcurrency < 1 {
		opts.BulkConcurrency = 4
	}
	return &Service{
		records:  records,
		store:    store,
		cleaner:  cleaner,
		resolver: NewResolver(records, catalogue, opts.SiteID),
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) Resolver() *Resolver { return s.resolver }

type UploadInput struct {
	FileInput
	Category    string
	Subcategory string
	Alt         string
	Principal   auth.Principal
}

// Upload validates the file, writes the blob and then creates the record.
// Nothing is written when validation fails. If the record cannot be created
// the blob is removed again, or queued for the reconciler when that fails.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.MediaRecord, error) {
	alt := sanitizeText(in.Alt)
	logical := LogicalPath(in.Category, in.Subcategory)
	for _, f := range []struct{ field, value string }{
		{"filename", in.Filename},
		{"alt", alt},
		{"path", logical},
	} {
		if err := checkLen(f.field, f.value); err != nil {
			return nil, err
		}
	}

	mimeType, mediaType, err := Inspect(in.FileInput, s.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	var width, height *int
	if mediaType == models.MediaImage {
		if cfg, _, err := image.DecodeConfig(in.Body); err == nil {
			width, height = &cfg.Width, &cfg.Height
		}
		if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload: %w", err)
		}
	}

	now := s.now()
	name := fmt.Sprintf("%d-%s", now.UnixMilli(), SafeName(in.Filename))
	key := TypeDir(mediaType) + "/" + keySegment(in.Category, in.Subcategory) + "/" + name

	url, err := s.store.Put(ctx, key, in.Body, mimeType)
	if err != nil {
		return nil, &StoreError{Op: "upload blob", Err: err}
	}

	rec := &models.MediaRecord{
		SiteID:       s.opts.SiteID,
		Name:         name,
		OriginalName: in.Filename,
		Type:         mediaType,
		MimeType:     mimeType,
		URL:          url,
		Bucket:       s.store.Bucket(),
		Size:         FormatSize(in.Size),
		Bytes:        in.Size,
		Width:        width,
		Height:       height,
		Path:         logical,
		Alt:          alt,
		UploaderID:   in.Principal.ID,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		cleanup := s.cleaner.RemoveKey(ctx, s.store, key, "record create failed")
		s.log.Error("Failed to create media record",
			zap.String("key", key),
			zap.String("cleanup", string(cleanup.Status)),
			zap.Error(err),
		)
		return nil, &StoreError{Op: "create media record", Err: err}
	}

	s.log.Info("Media uploaded",
		zap.String("id", rec.ID),
		zap.String("key", key),
		zap.String("type", string(rec.Type)),
		zap.Uint("uploader_id", in.Principal.ID),
	)

	saved, err := s.records.Get(ctx, s.opts.SiteID, rec.ID)
	if err != nil {
		return rec, nil
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.MediaRecord, error) {
	return s.records.Get(ctx, s.opts.SiteID, id)
}

func (s *Service) List(ctx context.Context, q Query) (*Listing, error) {
	return s.resolver.List(ctx, q)
}

// authorize loads id and checks p may change it.
func (s *Service) authorize(ctx context.Context, p auth.Principal, id string) (*models.MediaRecord, error) {
	rec, err := s.records.Get(ctx, s.opts.SiteID, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(rec.UploaderID) {
		return nil, ErrForbidden
	}
	return rec, nil
}

// Move retags the record with newPath. The blob and its URL stay where they are.
func (s *Service) Move(ctx context.Context, p auth.Principal, id, newPath string) (*models.MediaRecord, error) {
	newPath = strings.TrimSpace(newPath)
	if newPath == "" {
		return nil, Invalid(CodeMissingField, "newPath is required")
	}
	if err := checkLen("newPath", newPath); err != nil {
		return nil, err
	}

	rec, err := s.authorize(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.records.UpdatePath(ctx, s.opts.SiteID, id, newPath); err != nil {
		return nil, wrapStore("move media", err)
	}

	s.log.Info("Media moved", zap.String("id", id), zap.String("from", rec.Path), zap.String("to", newPath))
	return s.records.Get(ctx, s.opts.SiteID, id)
}

func (s *Service) UpdateAlt(ctx context.Context, p auth.Principal, id, alt string) (*models.MediaRecord, error) {
	alt = sanitizeText(alt)
	if err := checkLen("alt", alt); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	if err := s.records.UpdateAlt(ctx, s.opts.SiteID, id, alt); err != nil {
		return nil, wrapStore("update media", err)
	}
	return s.records.Get(ctx, s.opts.SiteID, id)
}

type DeleteResult struct {
	ID      string  `json:"id"`
	Cleanup Cleanup `json:"cleanup"`
}

// Delete removes the blob best-effort and the record unconditionally once the
// caller is allowed to.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) (*DeleteResult, error) {
	rec, err := s.authorize(ctx, p, id)
	if err != nil {
		return nil, err
	}

	cleanup := Cleanup{Status: CleanupSkipped}
	if store := s.storeFor(rec); store != nil {
		cleanup = s.cleaner.RemoveURL(ctx, store, rec.URL, "media deleted")
	}

	if err := s.records.Delete(ctx, s.opts.SiteID, id); err != nil {
		return nil, wrapStore("delete media", err)
	}

	s.log.Info("Media deleted",
		zap.String("id", id),
		zap.String("cleanup", string(cleanup.Status)),
		zap.Uint("user_id", p.ID),
	)
	return &DeleteResult{ID: id, Cleanup: cleanup}, nil
}

func (s *Service) storeFor(rec *models.MediaRecord) storage.BlobStore {
	if rec.Bucket == "" || rec.Bucket == s.store.Bucket() {
		return s.store
	}
	return nil
}

type BulkResult struct {
	ID      string   `json:"id"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
	Cleanup *Cleanup `json:"cleanup,omitempty"`
}

// BulkDelete deletes every id independently with bounded parallelism.
// Results are in input order; completed deletes are never rolled back.
func (s *Service) BulkDelete(ctx context.Context, p auth.Principal, ids []string) []BulkResult {
	results := make([]BulkResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BulkConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			res := BulkResult{ID: id}
			out, err := s.Delete(gctx, p, id)
			if err != nil {
				res.Error, res.Code = describeError(err)
			} else {
				res.Success = true
				res.Cleanup = &out.Cleanup
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type UploadResult struct {
	Filename string    `json:"filename"`
	Success  bool      `json:"success"`
	File     *FileView `json:"file,omitempty"`
	Error    string    `json:"error,omitempty"`
	Code     string    `json:"code,omitempty"`
}

// BulkUpload runs Upload for each input with the same bounded pool as BulkDelete.
func (s *Service) BulkUpload(ctx context.Context, inputs []UploadInput) []UploadResult {
	results := make([]UploadResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BulkConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			res := UploadResult{Filename: in.Filename}
			rec, err := s.Upload(gctx, in)
			if err != nil {
				res.Error, res.Code = describeError(err)
			} else {
				view := NewFileView(rec)
				res.Success = true
				res.File = &view
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Pick resolves id through a picker of type t, so callers only ever attach
// a record of the kind they asked for.
func (s *Service) Pick(ctx context.Context, t models.MediaType, id string) (*models.MediaRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, Invalid(CodeMissingField, "mediaId is required")
	}
	rec, err := s.records.Get(ctx, s.opts.SiteID, id)
	if err != nil {
		return nil, err
	}
	picker := NewPicker(t, rec.Path)
	if err := picker.Select(rec); err != nil {
		return nil, err
	}
	return picker.Selected(), nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.records.Stats(ctx, s.opts.SiteID, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, &StoreError{Op: "media stats", Err: err}
	}
	return stats, nil
}

func wrapStore(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func describeError(err error) (message, code string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message, verr.Code
	case errors.Is(err, ErrNotFound):
		return "Media not found", "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return ErrForbidden.Error(), "FORBIDDEN"
	default:
		return err.Error(), "STORE_ERROR"
	}
}
