package media

import (
	"context"
	"io"

	"github.com/Kyz7/dashboard/internal/storage"
)

// ReplaceResult reports the new URL of a single-slot upload and what happened
// to the blob it replaced.
type ReplaceResult struct {
	URL     string  `json:"url"`
	Cleanup Cleanup `json:"cleanup"`
}

// ReplaceOnUpload stores body under key, persists the new URL with save and
// only then removes the blob behind oldURL. The slot never points at a missing
// file: if save fails the new blob is removed and the old one is kept.
func (c *Cleaner) ReplaceOnUpload(ctx context.Context, store storage.BlobStore, key string, body io.Reader, contentType, oldURL string, save func(newURL string) error) (*ReplaceResult, error) {
	newURL, err := store.Put(ctx, key, body, contentType)
	if err != nil {
		return nil, &StoreError{Op: "upload " + key, Err: err}
	}

	if err := save(newURL); err != nil {
		c.RemoveKey(ctx, store, key, "replace save failed")
		return nil, err
	}

	result := &ReplaceResult{URL: newURL, Cleanup: Cleanup{Status: CleanupSkipped}}
	if oldURL != "" && oldURL != newURL {
		result.Cleanup = c.RemoveURL(ctx, store, oldURL, "replaced")
	}
	return result, nil
}
