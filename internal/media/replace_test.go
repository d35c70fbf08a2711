package media_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceOnUpload(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	store := ta.AboutBlobs
	ctx := context.Background()

	var slot string
	save := func(u string) error { slot = u; return nil }

	first, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-1.png", strings.NewReader("one"), "image/png", slot, save)
	require.NoError(t, err)
	assert.Equal(t, media.CleanupSkipped, first.Cleanup.Status)
	assert.Equal(t, first.URL, slot)

	t.Run("Success - Old blob removed after save", func(t *testing.T) {
		old := slot
		res, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-2.png", strings.NewReader("two"), "image/png", slot, save)
		require.NoError(t, err)
		assert.Equal(t, media.CleanupDone, res.Cleanup.Status)
		assert.Equal(t, "about-main-1.png", res.Cleanup.Key)
		assert.Equal(t, res.URL, slot)
		assert.False(t, store.HasURL(old))
		assert.True(t, store.HasURL(slot))
	})

	t.Run("Error - Save failure keeps the old blob", func(t *testing.T) {
		old := slot
		_, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-3.png", strings.NewReader("three"), "image/png", slot, func(string) error {
			return errors.New("db down")
		})
		require.Error(t, err)
		assert.Equal(t, old, slot)
		assert.True(t, store.HasURL(old))
		assert.False(t, store.Has("about-main-3.png"))
	})

	t.Run("Success - Cleanup failure does not fail the replace", func(t *testing.T) {
		store.SetRemoveErr(errors.New("denied"))
		defer store.SetRemoveErr(nil)

		res, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-4.png", strings.NewReader("four"), "image/png", slot, save)
		require.NoError(t, err)
		assert.Equal(t, media.CleanupFailed, res.Cleanup.Status)
		assert.True(t, res.Cleanup.Queued)
		assert.Equal(t, res.URL, slot)
	})

	t.Run("Success - Foreign URL is skipped", func(t *testing.T) {
		foreign := ta.MediaBlobs.PublicURL("images/general/1-a.png")
		res, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-5.png", strings.NewReader("five"), "image/png", foreign, save)
		require.NoError(t, err)
		assert.Equal(t, media.CleanupSkipped, res.Cleanup.Status)
	})

	t.Run("Error - Put failure leaves the slot alone", func(t *testing.T) {
		old := slot
		store.SetPutErr(errors.New("quota"))
		defer store.SetPutErr(nil)

		called := false
		_, err := ta.Cleaner.ReplaceOnUpload(ctx, store, "about-main-6.png", strings.NewReader("six"), "image/png", slot, func(string) error {
			called = true
			return nil
		})
		var serr *media.StoreError
		require.ErrorAs(t, err, &serr)
		assert.False(t, called)
		assert.Equal(t, old, slot)
	})
}
