package media_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type brokenQueue struct{}

func (brokenQueue) Enqueue(ctx context.Context, bucket, key, reason string, cause error) error {
	return errors.New("queue unavailable")
}

func TestReplaceSaveFailureCleanup(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	store := ta.AboutBlobs
	ctx := context.Background()
	saveErr := func(string) error { return errors.New("db down") }

	t.Run("Success - Unremovable new blob is queued", func(t *testing.T) {
		store.SetRemoveErr(errors.New("denied"))
		defer store.SetRemoveErr(nil)

		_, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-1.png", strings.NewReader("one"), "image/png", "", saveErr)
		require.Error(t, err)

		var orphan models.OrphanBlob
		require.NoError(t, ta.DB.Where(&models.OrphanBlob{Bucket: store.Bucket(), Key: "about-main-1.png"}).First(&orphan).Error)
		assert.Equal(t, "replace save failed", orphan.Reason)
	})

	t.Run("Error - Queue failure is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		cleaner := media.NewCleaner(brokenQueue{}, zap.New(core))

		store.SetRemoveErr(errors.New("denied"))
		defer store.SetRemoveErr(nil)

		_, err := cleaner.ReplaceOnUpload(ctx, store, "about-main-2.png", strings.NewReader("two"), "image/png", "", saveErr)
		require.Error(t, err)

		queued := logs.FilterMessage("Failed to queue orphan blob").All()
		require.Len(t, queued, 1)
		assert.Equal(t, zapcore.ErrorLevel, queued[0].Level)
		assert.Equal(t, "about-main-2.png", queued[0].ContextMap()["key"])
	})
}

func TestSweepLogsAttemptUpdateFailure(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	ctx := context.Background()

	require.NoError(t, ta.Reconciler.Enqueue(ctx, "media-files", "images/general/x.png", "test", errors.New("boom")))

	require.NoError(t, ta.DB.Callback().Update().Before("gorm:update").Register("test:fail_orphan_update", func(db *gorm.DB) {
		if db.Statement.Table == "orphan_blobs" {
			db.AddError(errors.New("db unavailable"))
		}
	}))

	core, logs := observer.New(zapcore.WarnLevel)
	reconciler := media.NewReconciler(ta.DB, ta.Buckets, zap.New(core))

	ta.MediaBlobs.SetRemoveErr(errors.New("still down"))
	res, err := reconciler.Sweep(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	failed := logs.FilterMessage("Failed to record orphan blob attempt").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "images/general/x.png", failed[0].ContextMap()["key"])

	var orphan models.OrphanBlob
	require.NoError(t, ta.DB.First(&orphan).Error)
	assert.Zero(t, orphan.Attempts)
}
