package media_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Kyz7/dashboard/internal/models"
	"github.com/Kyz7/dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileBody struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         string `json:"size"`
	Type         string `json:"type"`
	Path         string `json:"path"`
	Alt          string `json:"alt"`
	Uploader     struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"uploader"`
}

type fileResponse struct {
	Success bool     `json:"success"`
	File    fileBody `json:"file"`
}

type listResponse struct {
	Success bool       `json:"success"`
	Files   []fileBody `json:"files"`
	Folders []struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		ParentPath string `json:"parentPath"`
	} `json:"folders"`
	Breadcrumbs []struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"breadcrumbs"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"totalPages"`
	} `json:"pagination"`
}

func uploadViaAPI(t *testing.T, ta *testutils.TestApp, token string, fields map[string]string, file testutils.File) fileBody {
	resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload", fields, []testutils.File{file}, token)
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code, resp.Body.String())

	var result fileResponse
	testutils.ParseResponse(t, resp, &result)
	require.True(t, result.Success)
	return result.File
}

func pngFile(t *testing.T, name string, size int) testutils.File {
	return testutils.File{Field: "file", Filename: name, ContentType: "image/png", Content: testutils.PNG(t, 2, 2, size)}
}

func TestUploadHandler(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	editor := testutils.CreateTestUser(t, ta.DB, "editor@test.com", "password", "editor")
	viewer := testutils.CreateTestUser(t, ta.DB, "viewer@test.com", "password", "viewer")
	token := ta.Token(t, editor)

	t.Run("Success - Upload photo.png into about/general", func(t *testing.T) {
		file := uploadViaAPI(t, ta, token, map[string]string{
			"category":    "about",
			"subcategory": "general",
			"alt":         "Team photo",
		}, pngFile(t, "photo.png", 2*1024*1024))

		assert.Equal(t, "IMAGE", file.Type)
		assert.Equal(t, "/about/general", file.Path)
		assert.Equal(t, "2.00 MB", file.Size)
		assert.Equal(t, "photo.png", file.OriginalName)
		assert.Equal(t, "Team photo", file.Alt)
		assert.Equal(t, editor.ID, file.Uploader.ID)
		assert.Equal(t, editor.Email, file.Uploader.Email)
		assert.True(t, ta.MediaBlobs.HasURL(file.URL))
	})

	t.Run("Success - Generic content type is sniffed", func(t *testing.T) {
		file := uploadViaAPI(t, ta, token, nil, testutils.File{
			Field: "file", Filename: "pic.png", ContentType: "application/octet-stream", Content: testutils.PNG(t, 2, 2, 0),
		})
		assert.Equal(t, "IMAGE", file.Type)
		assert.Equal(t, "/", file.Path)
	})

	t.Run("Error - Executable rejected", func(t *testing.T) {
		puts := ta.MediaBlobs.Puts()
		var before int64
		ta.DB.Model(&models.MediaRecord{}).Count(&before)

		resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload", nil, []testutils.File{{
			Field: "file", Filename: "setup.exe", ContentType: "application/x-msdownload", Content: []byte("MZ\x90\x00\x03\x00"),
		}}, token)
		require.NoError(t, err)

		body := testutils.AssertError(t, resp, 400, "INVALID_FILE_TYPE")
		assert.Contains(t, body.Error, "Invalid file type")
		assert.Equal(t, puts, ta.MediaBlobs.Puts())

		var after int64
		ta.DB.Model(&models.MediaRecord{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Error - No file provided", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload", map[string]string{"alt": "x"}, nil, token)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "MISSING_FIELD")
	})

	t.Run("Error - Unauthenticated", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload", nil, []testutils.File{pngFile(t, "a.png", 0)}, "")
		require.NoError(t, err)
		testutils.AssertError(t, resp, 401, "UNAUTHORIZED")
	})

	t.Run("Error - Viewer lacks create permission", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload", nil, []testutils.File{pngFile(t, "a.png", 0)}, ta.Token(t, viewer))
		require.NoError(t, err)
		testutils.AssertError(t, resp, 403, "FORBIDDEN")
	})
}

func TestBulkUploadHandler(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	editor := testutils.CreateTestUser(t, ta.DB, "editor@test.com", "password", "editor")

	resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/bulk-upload", map[string]string{"category": "images"}, []testutils.File{
		{Field: "files", Filename: "a.png", ContentType: "image/png", Content: testutils.PNG(t, 1, 1, 0)},
		{Field: "files", Filename: "b.txt", ContentType: "text/plain", Content: []byte("notes")},
		{Field: "files", Filename: "c.exe", ContentType: "application/x-msdownload", Content: []byte("MZ")},
	}, ta.Token(t, editor))
	require.NoError(t, err)
	require.Equal(t, 200, resp.Code, resp.Body.String())

	var result struct {
		Success  bool `json:"success"`
		Uploaded int  `json:"uploaded"`
		Failed   int  `json:"failed"`
		Results  []struct {
			Filename string `json:"filename"`
			Success  bool   `json:"success"`
			Code     string `json:"code"`
		} `json:"results"`
	}
	testutils.ParseResponse(t, resp, &result)
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "c.exe", result.Results[2].Filename)
	assert.Equal(t, "INVALID_FILE_TYPE", result.Results[2].Code)
}

func TestListHandler(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	editor := testutils.CreateTestUser(t, ta.DB, "editor@test.com", "password", "editor")
	viewer := testutils.CreateTestUser(t, ta.DB, "viewer@test.com", "password", "viewer")
	token := ta.Token(t, editor)

	uploadViaAPI(t, ta, token, map[string]string{"category": "images", "subcategory": "general"}, pngFile(t, "nested.png", 0))
	uploadViaAPI(t, ta, token, map[string]string{"category": "images"}, pngFile(t, "top.png", 0))

	t.Run("Success - Exact path match", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media?path=/images&type=image", nil, ta.Token(t, viewer))
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var result listResponse
		testutils.ParseResponse(t, resp, &result)
		require.Len(t, result.Files, 1)
		assert.Equal(t, "top.png", result.Files[0].OriginalName)
		assert.Len(t, result.Folders, 4)
		require.Len(t, result.Breadcrumbs, 2)
		assert.Equal(t, "Images", result.Breadcrumbs[1].Name)
		assert.Equal(t, int64(1), result.Pagination.Total)
	})

	t.Run("Success - No path lists all files", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media?limit=1", nil, token)
		require.NoError(t, err)

		var result listResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, result.Files, 1)
		assert.Equal(t, int64(2), result.Pagination.Total)
		assert.Equal(t, int64(2), result.Pagination.TotalPages)
	})

	t.Run("Error - Unknown type", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media?type=spreadsheet", nil, token)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "INVALID_FILE_TYPE")
	})

	t.Run("Success - Folders", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media/folders?path=/audio&type=audio", nil, token)
		require.NoError(t, err)

		var result listResponse
		testutils.ParseResponse(t, resp, &result)
		require.Len(t, result.Folders, 2)
		assert.Equal(t, "/audio/general", result.Folders[0].Path)
	})

	t.Run("Success - Picker is scoped to one type", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media/picker?type=audio&path=/images", nil, token)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code)

		var result listResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Empty(t, result.Files)
		assert.Empty(t, result.Folders)
	})

	t.Run("Error - Picker requires a type", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media/picker?path=/images", nil, token)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "MISSING_FIELD")
	})

	t.Run("Success - Stats", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "GET", "/media/stats", nil, token)
		require.NoError(t, err)

		var result struct {
			Stats struct {
				TotalFiles int64 `json:"totalFiles"`
			} `json:"stats"`
			StorageMode string `json:"storageMode"`
		}
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, int64(2), result.Stats.TotalFiles)
		assert.Equal(t, "memory", result.StorageMode)
	})
}

func TestMoveHandler(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	userA := testutils.CreateTestUser(t, ta.DB, "a@test.com", "password", "editor")
	userB := testutils.CreateTestUser(t, ta.DB, "b@test.com", "password", "editor")
	tokenA := ta.Token(t, userA)

	f1 := uploadViaAPI(t, ta, tokenA, map[string]string{"category": "images", "subcategory": "general"}, pngFile(t, "f1.png", 0))

	t.Run("Success - Move keeps url", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID+"/move", map[string]string{"newPath": "/images/blog"}, tokenA)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var result fileResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "/images/blog", result.File.Path)
		assert.Equal(t, f1.URL, result.File.URL)
	})

	t.Run("Error - Other editor is forbidden", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID+"/move", map[string]string{"newPath": "/images/about"}, ta.Token(t, userB))
		require.NoError(t, err)
		testutils.AssertError(t, resp, 403, "FORBIDDEN")

		var rec models.MediaRecord
		require.NoError(t, ta.DB.First(&rec, "id = ?", f1.ID).Error)
		assert.Equal(t, "/images/blog", rec.Path)
	})

	t.Run("Error - Missing newPath", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID+"/move", map[string]string{}, tokenA)
		require.NoError(t, err)
		body := testutils.AssertError(t, resp, 400, "MISSING_FIELD")
		assert.Equal(t, "newPath is required", body.Error)
	})

	t.Run("Error - Unknown id", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/nope/move", map[string]string{"newPath": "/x"}, tokenA)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 404, "NOT_FOUND")
	})

	t.Run("Error - Overlong newPath", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID+"/move", map[string]string{"newPath": "/" + strings.Repeat("p", 300)}, tokenA)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "VALIDATION_ERROR")
	})

	t.Run("Error - Overlong alt", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID, map[string]string{"alt": strings.Repeat("a", 256)}, tokenA)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "VALIDATION_ERROR")
	})

	t.Run("Error - Overlong alt on upload stores nothing", func(t *testing.T) {
		puts := ta.MediaBlobs.Puts()
		resp, err := testutils.MakeMultipartRequest(ta.App, "POST", "/media/upload",
			map[string]string{"alt": strings.Repeat("a", 256)}, []testutils.File{pngFile(t, "long.png", 0)}, tokenA)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 400, "VALIDATION_ERROR")
		assert.Equal(t, puts, ta.MediaBlobs.Puts())
	})

	t.Run("Success - Update alt", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "PATCH", "/media/"+f1.ID, map[string]string{"alt": "Cover"}, tokenA)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var result fileResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "Cover", result.File.Alt)
	})
}

func TestDeleteHandler(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	owner := testutils.CreateTestUser(t, ta.DB, "a@test.com", "password", "editor")
	other := testutils.CreateTestUser(t, ta.DB, "b@test.com", "password", "editor")
	token := ta.Token(t, owner)

	t.Run("Success - Missing blob still deletes record", func(t *testing.T) {
		f1 := uploadViaAPI(t, ta, token, nil, pngFile(t, "f1.png", 0))
		key, ok := ta.MediaBlobs.KeyFromURL(f1.URL)
		require.True(t, ok)
		ta.MediaBlobs.Drop(key)

		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/media/"+f1.ID, nil, token)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var result struct {
			Success bool `json:"success"`
			Cleanup struct {
				Status string `json:"status"`
			} `json:"cleanup"`
		}
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)
		assert.Equal(t, "failed", result.Cleanup.Status)

		resp, err = testutils.MakeRequest(ta.App, "GET", "/media/"+f1.ID, nil, token)
		require.NoError(t, err)
		testutils.AssertError(t, resp, 404, "NOT_FOUND")
	})

	t.Run("Error - Other editor cannot delete", func(t *testing.T) {
		f2 := uploadViaAPI(t, ta, token, nil, pngFile(t, "f2.png", 0))

		resp, err := testutils.MakeRequest(ta.App, "DELETE", "/media/"+f2.ID, nil, ta.Token(t, other))
		require.NoError(t, err)
		testutils.AssertError(t, resp, 403, "FORBIDDEN")
		assert.True(t, ta.MediaBlobs.HasURL(f2.URL))
	})

	t.Run("Success - Bulk delete reports per id", func(t *testing.T) {
		a := uploadViaAPI(t, ta, token, nil, pngFile(t, "a.png", 0))
		b := uploadViaAPI(t, ta, token, nil, pngFile(t, "b.png", 0))

		ids := []string{a.ID, "missing", b.ID, a.ID}
		resp, err := testutils.MakeRequest(ta.App, "POST", "/media/bulk-delete", map[string][]string{"ids": ids}, token)
		require.NoError(t, err)
		require.Equal(t, 200, resp.Code, resp.Body.String())

		var result struct {
			Deleted int `json:"deleted"`
			Failed  int `json:"failed"`
			Results []struct {
				ID      string `json:"id"`
				Success bool   `json:"success"`
				Code    string `json:"code"`
			} `json:"results"`
		}
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, 2, result.Deleted)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Results, 3, "duplicate ids are collapsed")
		assert.Equal(t, a.ID, result.Results[0].ID)
		assert.Equal(t, "missing", result.Results[1].ID)
		assert.Equal(t, "NOT_FOUND", result.Results[1].Code)
		assert.True(t, result.Results[2].Success)
	})

	t.Run("Error - Bulk delete needs ids", func(t *testing.T) {
		resp, err := testutils.MakeRequest(ta.App, "POST", "/media/bulk-delete", map[string][]string{"ids": {}}, token)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Code, fmt.Sprintf("body: %s", resp.Body.String()))
	})
}
