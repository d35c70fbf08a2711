package testutils

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Kyz7/dashboard/internal/storage"
)

// FakeBlobStore is an in-memory storage.BlobStore that counts calls and can
// be told to fail.
type FakeBlobStore struct {
	mu        sync.Mutex
	bucket    string
	base      string
	objects   map[string][]byte
	puts      int
	removes   int
	putErr    error
	removeErr error
}

func NewFakeBlobStore(bucket string) *FakeBlobStore {
	return &FakeBlobStore{
		bucket:  bucket,
		base:    "https://cdn.test/" + bucket + "/",
		objects: map[string][]byte{},
	}
}

func (s *FakeBlobStore) Bucket() string { return s.bucket }

func (s *FakeBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return s.base + key, nil
}

func (s *FakeBlobStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removes++
	if s.removeErr != nil {
		return s.removeErr
	}
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%s/%s: %w", s.bucket, key, storage.ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

func (s *FakeBlobStore) PublicURL(key string) string { return s.base + key }

func (s *FakeBlobStore) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, s.base)
	return key, ok && key != ""
}

func (s *FakeBlobStore) SetPutErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

func (s *FakeBlobStore) SetRemoveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeErr = err
}

// Drop deletes key behind the store's back, as if it vanished from the bucket.
func (s *FakeBlobStore) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

func (s *FakeBlobStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *FakeBlobStore) HasURL(rawURL string) bool {
	key, ok := s.KeyFromURL(rawURL)
	return ok && s.Has(key)
}

func (s *FakeBlobStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *FakeBlobStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *FakeBlobStore) Removes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removes
}
