package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs under {root}/{bucket} and serves them at
// {baseURL}/uploads/{bucket}/. Without a base URL the links are root-relative.
type LocalStore struct {
	root    string
	bucket  string
	baseURL string
}

func NewLocalStore(root, bucket, baseURL string) *LocalStore {
	return &LocalStore{root: root, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Bucket() string { return s.bucket }

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return s.PublicURL(key), nil
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return s.urlPrefix() + escapeKey(key)
}

// KeyFromURL also accepts the root-relative form, which is what was stored
// before a base URL was configured.
func (s *LocalStore) KeyFromURL(rawURL string) (string, bool) {
	if key, ok := keyAfterPrefix(rawURL, s.urlPrefix()); ok {
		return key, true
	}
	return keyAfterPrefix(rawURL, s.servePath())
}

func (s *LocalStore) urlPrefix() string {
	return s.baseURL + s.servePath()
}

func (s *LocalStore) servePath() string {
	return "/uploads/" + s.bucket + "/"
}

// resolve maps a key to a path and refuses anything outside the bucket directory.
func (s *LocalStore) resolve(key string) (string, error) {
	base, err := filepath.Abs(filepath.Join(s.root, s.bucket))
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	full, err := filepath.Abs(filepath.Join(base, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q resolves outside bucket directory", key)
	}
	return full, nil
}
