package media

import (
	"strings"
	"testing"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want models.MediaType
		ok   bool
	}{
		{"image/png", models.MediaImage, true},
		{"image/jpeg; charset=binary", models.MediaImage, true},
		{"IMAGE/WEBP", models.MediaImage, true},
		{"audio/mpeg", models.MediaAudio, true},
		{"video/mp4", models.MediaVideo, true},
		{"application/pdf", models.MediaDocument, true},
		{"application/x-msdownload", "", false},
		{"image/x-icon", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			got, ok := Classify(tt.mime)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMIME(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("Success - Declared type wins", func(t *testing.T) {
		assert.Equal(t, "audio/mpeg", ResolveMIME("audio/mpeg", png))
	})

	t.Run("Success - Sniffs generic declaration", func(t *testing.T) {
		assert.Equal(t, "image/png", ResolveMIME("application/octet-stream", png))
		assert.Equal(t, "image/png", ResolveMIME("", png))
	})

	t.Run("Success - Executable is not allow-listed", func(t *testing.T) {
		mime := ResolveMIME("", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"))
		_, ok := Classify(mime)
		assert.False(t, ok, mime)
	})
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "2.00 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "0.00 MB", FormatSize(0))
	assert.Equal(t, "1.50 MB", FormatSize(1536*1024))
}

func TestLogicalPath(t *testing.T) {
	assert.Equal(t, "/about/general", LogicalPath("about", "general"))
	assert.Equal(t, "/images", LogicalPath("images", ""))
	assert.Equal(t, "/general", LogicalPath("", "general"))
	assert.Equal(t, "/", LogicalPath("", ""))
	assert.Equal(t, "/about/team", LogicalPath(" /about/ ", "team/"))
}

func TestParseType(t *testing.T) {
	got, err := ParseType("image")
	assert.NoError(t, err)
	assert.Equal(t, models.MediaImage, got)

	got, err = ParseType("")
	assert.NoError(t, err)
	assert.Equal(t, models.MediaType(""), got)

	_, err = ParseType("spreadsheet")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestKeyParts(t *testing.T) {
	assert.Equal(t, "photo.png", SafeName("photo.png"))
	assert.Equal(t, "my-photo-1.png", SafeName("my photo (1).png"))
	assert.Equal(t, "passwd", SafeName("../../etc/passwd"))
	assert.Equal(t, "file", SafeName("..."))
	assert.Equal(t, "archive.tar.gz", SafeName("archive.tar.gz"))
	assert.Equal(t, "file.png", SafeName("фото.png"))
	assert.Equal(t, "file.jpg", SafeName("写真.jpg"))
	assert.Equal(t, "IMG-2024.jpeg", SafeName("IMG 2024 отпуск.jpeg"))
	assert.Equal(t, "notes", SafeName("notes.тест"))

	long := SafeName(strings.Repeat("a", 300) + ".png")
	assert.Len(t, long, 255-len("1700000000000-"))
	assert.True(t, strings.HasSuffix(long, ".png"))
	assert.LessOrEqual(t, len("1700000000000-"+long), 255)

	assert.Equal(t, "general", keySegment("about", "general"))
	assert.Equal(t, "about", keySegment("about", ""))
	assert.Equal(t, "general", keySegment("", ""))

	assert.Equal(t, "about-main-1700000000000.png", SlotKey("about-main", 1700000000000, "image/png", "x.PNG"))
	assert.Equal(t, "team-0-1700000000000.jpg", SlotKey("team-0", 1700000000000, "image/jpeg", "face.jpeg"))
}
