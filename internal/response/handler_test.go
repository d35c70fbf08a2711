package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePagination(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        int64
	}{
		{1, 20, 0, 0},
		{1, 20, 20, 1},
		{2, 5, 11, 3},
		{1, 0, 10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculatePagination(tt.page, tt.limit, tt.total).TotalPages)
	}
}

func TestParseAndValidate(t *testing.T) {
	type moveBody struct {
		NewPath string `json:"newPath" validate:"required"`
	}

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var body moveBody
		if err := ParseAndValidate(c, &body); err != nil {
			return nil
		}
		return OK(c, fiber.Map{"path": body.NewPath})
	})

	send := func(body string) (int, map[string]interface{}) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &out))
		return resp.StatusCode, out
	}

	t.Run("Success - valid body", func(t *testing.T) {
		status, out := send(`{"newPath":"/images/about"}`)
		assert.Equal(t, 200, status)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, "/images/about", out["path"])
	})

	t.Run("Error - missing field", func(t *testing.T) {
		status, out := send(`{}`)
		assert.Equal(t, 400, status)
		assert.Equal(t, false, out["success"])
		assert.Equal(t, "MISSING_FIELD", out["code"])
		assert.Equal(t, "newPath is required", out["error"])
	})

	t.Run("Error - malformed json", func(t *testing.T) {
		status, out := send(`{"newPath":`)
		assert.Equal(t, 400, status)
		assert.Equal(t, "BAD_REQUEST", out["code"])
	})
}
