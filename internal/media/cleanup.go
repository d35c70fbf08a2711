package media

import (
	"context"
	"errors"
	"time"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleanupStatus string

const (
	CleanupDone    CleanupStatus = "done"
	CleanupFailed  CleanupStatus = "failed"
	CleanupSkipped CleanupStatus = "skipped"
)

// Cleanup is the outcome of a best-effort blob removal. A failed cleanup never
// fails the request that caused it.
type Cleanup struct {
	Status CleanupStatus `json:"status"`
	Bucket string        `json:"bucket,omitempty"`
	Key    string        `json:"key,omitempty"`
	Error  string        `json:"error,omitempty"`
	Queued bool          `json:"queued,omitempty"`
}

func (c Cleanup) Failed() bool { return c.Status == CleanupFailed }

type CleanupQueue interface {
	Enqueue(ctx context.Context, bucket, key, reason string, cause error) error
}

// Cleaner removes blobs that are no longer referenced.
type Cleaner struct {
	queue CleanupQueue
	log   *zap.Logger
}

func NewCleaner(queue CleanupQueue, log *zap.Logger) *Cleaner {
	return &Cleaner{queue: queue, log: log}
}

// RemoveURL removes the blob behind rawURL if store issued it. URLs the store
// does not recognise are skipped.
func (c *Cleaner) RemoveURL(ctx context.Context, store storage.BlobStore, rawURL, reason string) Cleanup {
	if store == nil || rawURL == "" {
		return Cleanup{Status: CleanupSkipped}
	}
	key, ok := store.KeyFromURL(rawURL)
	if !ok {
		c.log.Debug("Skipping cleanup of foreign URL",
			zap.String("bucket", store.Bucket()),
			zap.String("url", rawURL),
		)
		return Cleanup{Status: CleanupSkipped, Bucket: store.Bucket()}
	}
	return c.RemoveKey(ctx, store, key, reason)
}

// RemoveKey removes key from store. A missing blob is reported as failed but
// not queued since there is nothing left to reconcile.
func (c *Cleaner) RemoveKey(ctx context.Context, store storage.BlobStore, key, reason string) Cleanup {
	result := Cleanup{Status: CleanupDone, Bucket: store.Bucket(), Key: key}

	err := store.Remove(ctx, key)
	if err == nil {
		return result
	}

	result.Status = CleanupFailed
	result.Error = err.Error()
	c.log.Warn("Blob cleanup failed",
		zap.String("bucket", store.Bucket()),
		zap.String("key", key),
		zap.String("reason", reason),
		zap.Error(err),
	)

	if errors.Is(err, storage.ErrNotFound) || c.queue == nil {
		return result
	}
	if qerr := c.queue.Enqueue(ctx, store.Bucket(), key, reason, err); qerr != nil {
		c.log.Error("Failed to queue orphan blob",
			zap.String("bucket", store.Bucket()),
			zap.String("key", key),
			zap.Error(qerr),
		)
		return result
	}
	result.Queued = true
	return result
}

// Reconciler keeps the orphan queue and retries removals from it.
type Reconciler struct {
	db      *gorm.DB
	buckets storage.Buckets
	log     *zap.Logger
}

func NewReconciler(db *gorm.DB, buckets storage.Buckets, log *zap.Logger) *Reconciler {
	return &Reconciler{db: db, buckets: buckets, log: log}
}

func (r *Reconciler) Enqueue(ctx context.Context, bucket, key, reason string, cause error) error {
	orphan := models.OrphanBlob{Bucket: bucket, Key: key, Reason: reason}
	if cause != nil {
		orphan.LastError = cause.Error()
	}
	return r.db.WithContext(ctx).
		Where(models.OrphanBlob{Bucket: bucket, Key: key}).
		Attrs(orphan).
		FirstOrCreate(&orphan).Error
}

type SweepResult struct {
	Removed int
	Failed  int
}

// Sweep retries up to limit queued removals, oldest first. Rows are deleted on
// success or when the blob is already gone.
func (r *Reconciler) Sweep(ctx context.Context, limit int) (SweepResult, error) {
	var res SweepResult

	var orphans []models.OrphanBlob
	if err := r.db.WithContext(ctx).Order("updated_at ASC").Limit(limit).Find(&orphans).Error; err != nil {
		return res, err
	}

	for _, o := range orphans {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		store, ok := r.buckets.Lookup(o.Bucket)
		if !ok {
			r.log.Warn("Orphan blob references unknown bucket", zap.String("bucket", o.Bucket), zap.String("key", o.Key))
			res.Failed++
			continue
		}

		err := store.Remove(ctx, o.Key)
		if err == nil || errors.Is(err, storage.ErrNotFound) {
			if derr := r.db.WithContext(ctx).Delete(&models.OrphanBlob{}, o.ID).Error; derr != nil {
				return res, derr
			}
			res.Removed++
			continue
		}

		res.Failed++
		if uerr := r.db.WithContext(ctx).Model(&models.OrphanBlob{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": err.Error(),
			"updated_at": time.Now(),
		}).Error; uerr != nil {
			r.log.Error("Failed to record orphan blob attempt",
				zap.Uint("id", o.ID),
				zap.String("key", o.Key),
				zap.Error(uerr),
			)
		}
	}

	if res.Removed > 0 || res.Failed > 0 {
		r.log.Info("Orphan blob sweep finished", zap.Int("removed", res.Removed), zap.Int("failed", res.Failed))
	}
	return res, nil
}

// Run sweeps every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration, batch int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx, batch); err != nil && ctx.Err() == nil {
				r.log.Error("Orphan blob sweep failed", zap.Error(err))
			}
		}
	}
}
