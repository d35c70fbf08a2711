package media

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

var allowedMIME = map[string]models.MediaType{
	"image/jpeg":    models.MediaImage,
	"image/png":     models.MediaImage,
	"image/gif":     models.MediaImage,
	"image/webp":    models.MediaImage,
	"image/svg+xml": models.MediaImage,
	"image/avif":    models.MediaImage,

	"audio/mpeg":  models.MediaAudio,
	"audio/mp3":   models.MediaAudio,
	"audio/wav":   models.MediaAudio,
	"audio/x-wav": models.MediaAudio,
	"audio/ogg":   models.MediaAudio,
	"audio/mp4":   models.MediaAudio,
	"audio/x-m4a": models.MediaAudio,
	"audio/aac":   models.MediaAudio,
	"audio/webm":  models.MediaAudio,

	"video/mp4":       models.MediaVideo,
	"video/webm":      models.MediaVideo,
	"video/quicktime": models.MediaVideo,
	"video/ogg":       models.MediaVideo,

	"application/pdf":    models.MediaDocument,
	"application/msword": models.MediaDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   models.MediaDocument,
	"application/vnd.ms-excel":                                                  models.MediaDocument,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         models.MediaDocument,
	"application/vnd.ms-powerpoint":                                             models.MediaDocument,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.MediaDocument,
	"text/plain": models.MediaDocument,
	"text/csv":   models.MediaDocument,
}

var typeDirs = map[models.MediaType]string{
	models.MediaImage:    "images",
	models.MediaAudio:    "audio",
	models.MediaVideo:    "videos",
	models.MediaDocument: "documents",
}

// Classify maps an allow-listed MIME type to its MediaType.
func Classify(mimeType string) (models.MediaType, bool) {
	t, ok := allowedMIME[normalizeMIME(mimeType)]
	return t, ok
}

// ParseType accepts the API spelling of a type filter ("image", "IMAGE").
// An empty string is a valid "no filter".
func ParseType(s string) (models.MediaType, error) {
	if s == "" {
		return "", nil
	}
	t := models.MediaType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", Invalid(CodeInvalidType, fmt.Sprintf("Unknown media type %q", s))
	}
	return t, nil
}

func TypeDir(t models.MediaType) string {
	return typeDirs[t]
}

// ResolveMIME prefers the declared content type and sniffs head only when the
// declaration is missing or generic.
func ResolveMIME(declared string, head []byte) string {
	declared = normalizeMIME(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return normalizeMIME(mimetype.Detect(head).String())
}

func normalizeMIME(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}

// FormatSize renders bytes as megabytes with two decimals, e.g. "2.00 MB".
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}

// LogicalPath builds the folder tag from category and subcategory. Empty parts
// are dropped; with neither the file lands at root.
func LogicalPath(category, subcategory string) string {
	var parts []string
	for _, p := range []string{category, subcategory} {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const (
	// maxNameLen leaves room for the "{unixMillis}-" prefix in a 255 column.
	maxNameLen = 255 - len("0000000000000-")
	maxExtLen  = 16
)

// SafeName reduces a user-supplied file name to something usable in a blob key.
// Stem and extension are cleaned separately so a name made only of non-ASCII
// characters still keeps its extension.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext = strings.Trim(unsafeName.ReplaceAllString(strings.TrimPrefix(ext, "."), ""), "-."); ext != "" {
		if len(ext) > maxExtLen {
			ext = ext[:maxExtLen]
		}
		ext = "." + ext
	}

	stem = strings.Trim(unsafeName.ReplaceAllString(stem, "-"), "-.")
	if stem == "" {
		stem = "file"
	}
	if limit := maxNameLen - len(ext); len(stem) > limit {
		stem = strings.TrimRight(stem[:limit], "-.")
	}
	return stem + ext
}

func keySegment(category, subcategory string) string {
	for _, s := range []string{subcategory, category} {
		if s = strings.Trim(strings.TrimSpace(s), "/"); s != "" {
			return SafeName(s)
		}
	}
	return "general"
}
