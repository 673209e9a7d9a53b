package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"replyOnUserId", "reply on user ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorResponder})
	app.Get("/comments/:commentId", func(c *fiber.Ctx) error {
		id, err := parseID(c, "commentId")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/comments/42", http.StatusOK},
		{"/comments/abc", http.StatusBadRequest},
		{"/comments/0", http.StatusBadRequest},
		{"/comments/-3", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusBadRequest {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "Invalid comment ID", body.Message)
			}
		})
	}
}

func TestErrorResponder(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", models.NewNotFoundError("Post not found"), http.StatusNotFound, "Post not found"},
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest, "bad"},
		{"unauthorized", models.NewUnauthorizedError("Not authorized, No Token"), http.StatusUnauthorized, "Not authorized, No Token"},
		{"upload", models.NewUploadError(errors.New("disk full")), http.StatusInternalServerError, "An unknown error occurred when uploading"},
		{"internal hides cause", models.NewInternalError(errors.New("pq: secret detail")), http.StatusInternalServerError, "Internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		{"fiber error keeps code", fiber.NewError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "rate limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: errorResponder})
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestOptionalFile(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorResponder})
	app.Post("/upload", func(c *fiber.Ctx) error {
		fh, err := optionalFile(c, fieldPostPicture)
		if err != nil {
			return err
		}
		if fh == nil {
			return c.JSON(fiber.Map{"file": ""})
		}
		return c.JSON(fiber.Map{"file": fh.Filename})
	})

	decode := func(t *testing.T, resp *http.Response) string {
		t.Helper()
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["file"]
	}

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, decode(t, resp))
	})

	t.Run("multipart without the field", func(t *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		require.NoError(t, w.WriteField(fieldDocument, `{}`))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, decode(t, resp))
	})

	t.Run("multipart with the field", func(t *testing.T) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, err := w.CreateFormFile(fieldPostPicture, "cover.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "cover.png", decode(t, resp))
	})
}
