package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// FileInput is an uploaded file before it reaches any store.
type FileInput struct {
	Filename     string
	DeclaredType string
	Size         int64
	Body         io.ReadSeeker
}

// FromFormFile opens fh. The caller closes the returned file.
func FromFormFile(fh *multipart.FileHeader) (FileInput, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return FileInput{}, nil, err
	}
	return FileInput{
		Filename:     fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
	}, f, nil
}

// Inspect resolves and classifies the file, enforces limit and restricts the
// type to allowed when given. Body is rewound before returning.
func Inspect(in FileInput, limit int64, allowed ...models.MediaType) (string, models.MediaType, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind upload: %w", err)
	}

	mimeType := ResolveMIME(in.DeclaredType, head[:n])
	t, ok := Classify(mimeType)
	if !ok || (len(allowed) > 0 && !containsType(allowed, t)) {
		return "", "", Invalid(CodeInvalidType, "Invalid file type: "+mimeType)
	}

	if limit > 0 && in.Size > limit {
		return "", "", Invalid(CodeTooLarge, fmt.Sprintf("File too large: %s exceeds the %s limit", FormatSize(in.Size), FormatSize(limit)))
	}
	return mimeType, t, nil
}

func containsType(types []models.MediaType, t models.MediaType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// SlotKey names the blob for a single-purpose upload: "{context}-{unixMillis}.{ext}".
func SlotKey(slot string, unixMillis int64, mimeType, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}
	return fmt.Sprintf("%s-%d%s", slot, unixMillis, ext)
}
