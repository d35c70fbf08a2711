package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/Kyz7/dashboard/internal/about"
	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/database"
	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/podcast"
	"github.com/Kyz7/dashboard/internal/role"
	"github.com/Kyz7/dashboard/internal/server"
	"github.com/Kyz7/dashboard/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TestSiteID    = "test-site"
	TestJWTSecret = "test_secret_key_minimum_32_characters_long"
)

// TestDB opens a private in-memory database. A single connection keeps every
// goroutine on the same database.
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db), "Failed to migrate test database")
	require.NoError(t, role.SeedDefaultRoles(db), "Failed to seed roles")

	return db
}

type TestApp struct {
	App        *fiber.App
	DB         *gorm.DB
	Tokens     *auth.TokenManager
	Log        *zap.Logger
	Buckets    storage.Buckets
	MediaBlobs *FakeBlobStore
	AboutBlobs *FakeBlobStore
	AudioBlobs *FakeBlobStore
	Cleaner    *media.Cleaner
	Reconciler *media.Reconciler
	Media      *media.Service
	About      *about.Service
	Podcasts   *podcast.Service
}

func SetupTestApp(t *testing.T) *TestApp {
	db := TestDB(t)
	log := zap.NewNop()

	ta := &TestApp{
		DB:         db,
		Tokens:     auth.NewTokenManager(TestJWTSecret, time.Hour),
		Log:        log,
		MediaBlobs: NewFakeBlobStore("media-files"),
		AboutBlobs: NewFakeBlobStore("about-images"),
		AudioBlobs: NewFakeBlobStore("podcasts-audio"),
	}
	ta.Buckets = storage.Buckets{Mode: "memory", Media: ta.MediaBlobs, About: ta.AboutBlobs, Podcasts: ta.AudioBlobs}
	ta.Reconciler = media.NewReconciler(db, ta.Buckets, log)
	ta.Cleaner = media.NewCleaner(ta.Reconciler, log)
	ta.Media = media.NewService(media.NewGormStore(db), ta.MediaBlobs, ta.Cleaner, media.DefaultCatalogue(), log, media.Options{
		SiteID:          TestSiteID,
		MaxUploadBytes:  50 << 20,
		BulkConcurrency: 4,
	})
	ta.About = about.NewService(db, ta.AboutBlobs, ta.Media, ta.Cleaner, log, TestSiteID, 5<<20)
	ta.Podcasts = podcast.NewService(db, ta.AudioBlobs, ta.Media, ta.Cleaner, log, TestSiteID, 50<<20)

	ta.App = server.New(server.Deps{
		DB:          db,
		Log:         log,
		Tokens:      ta.Tokens,
		Media:       ta.Media,
		About:       ta.About,
		Podcasts:    ta.Podcasts,
		StorageMode: ta.Buckets.Mode,
	})
	return ta
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleName string) *models.User {
	hashedPassword, err := auth.HashPassword(password)
	require.NoError(t, err)

	r, err := role.FindByName(db, roleName)
	if err != nil {
		t.Fatalf("Failed to find role '%s': %v", roleName, err)
	}

	user := &models.User{
		Name:     "Test User " + roleName,
		Email:    email,
		Password: hashedPassword,
		Status:   "active",
		RoleID:   r.ID,
	}
	require.NoError(t, db.Create(user).Error, "Failed to create test user")

	db.Preload("Role.Permissions").First(user, user.ID)
	if user.Role == nil {
		t.Fatal("Role not loaded for user")
	}
	return user
}

// Token signs an access token for user.
func (ta *TestApp) Token(t *testing.T, user *models.User) string {
	token, err := ta.Tokens.Generate(user.ID, user.RoleName())
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func (ta *TestApp) Principal(user *models.User) auth.Principal {
	return auth.Principal{ID: user.ID, Role: user.RoleName()}
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return do(app, req)
}

type File struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

func MakeMultipartRequest(app *fiber.App, method, url string, fields map[string]string, files []File, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		part.Write(f.Content)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return do(app, req)
}

func do(app *fiber.App, req *http.Request) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.Unmarshal(resp.Body.Bytes(), v)
	if err != nil {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, status int, expectedCode string) ErrorBody {
	var result ErrorBody
	ParseResponse(t, resp, &result)
	assert.Equal(t, status, resp.Code, "status mismatch: %s", resp.Body.String())
	assert.False(t, result.Success, "Expected error response")
	assert.Equal(t, expectedCode, result.Code, "Error code mismatch")
	return result
}

// PNG returns a valid w x h PNG padded with trailing bytes to exactly size
// bytes when size is larger than the encoded image.
func PNG(t *testing.T, w, h, size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	if pad := size - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}
	return buf.Bytes()
}

// MP3 returns bytes starting with an ID3 tag, enough for content sniffing.
func MP3(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte("ID3\x03\x00\x00\x00\x00\x00\x00"))
	return data
}
