// Package storage provides key-addressed blob stores that return public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Kyz7/dashboard/internal/config"
)

// ErrNotFound is returned by Remove when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobStore is one bucket. Keys are hierarchical strings such as
// "images/general/1699000000000-photo.jpg".
type BlobStore interface {
	Bucket() string
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
	// KeyFromURL reports the key behind a URL this store issued. URLs from
	// other stores or hosts are not recognised.
	KeyFromURL(rawURL string) (string, bool)
}

// Buckets is the fixed set of stores the dashboard writes to.
type Buckets struct {
	Mode     string
	Media    BlobStore
	About    BlobStore
	Podcasts BlobStore
}

func (b Buckets) Lookup(bucket string) (BlobStore, bool) {
	for _, s := range []BlobStore{b.Media, b.About, b.Podcasts} {
		if s != nil && s.Bucket() == bucket {
			return s, true
		}
	}
	return nil, false
}

// Open builds the three stores for the configured mode.
func Open(cfg config.StorageConfig) (Buckets, error) {
	switch cfg.Mode {
	case "local":
		return Buckets{
			Mode:     "local",
			Media:    NewLocalStore(cfg.UploadDir, cfg.MediaBucket, cfg.PublicBaseURL),
			About:    NewLocalStore(cfg.UploadDir, cfg.AboutBucket, cfg.PublicBaseURL),
			Podcasts: NewLocalStore(cfg.UploadDir, cfg.PodcastBucket, cfg.PublicBaseURL),
		}, nil
	case "s3":
		opts := S3Options{Region: cfg.Region, Endpoint: cfg.Endpoint, PublicURL: cfg.PublicURL}
		sess, err := NewS3Session(opts)
		if err != nil {
			return Buckets{}, fmt.Errorf("s3 session: %w", err)
		}
		return Buckets{
			Mode:     "s3",
			Media:    NewS3Store(sess, cfg.MediaBucket, opts),
			About:    NewS3Store(sess, cfg.AboutBucket, opts),
			Podcasts: NewS3Store(sess, cfg.PodcastBucket, opts),
		}, nil
	default:
		return Buckets{}, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func keyAfterPrefix(rawURL, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(rawURL, prefix)
	if !ok || rest == "" {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
