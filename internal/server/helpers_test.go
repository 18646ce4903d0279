package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"lumen/internal/cache"
	"lumen/internal/config"
	"lumen/internal/database"
	"lumen/internal/middleware"
	"lumen/internal/models"
	"lumen/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// newTestServer builds a full server over an in-memory database and a
// temp-dir media store, with caching disabled.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret",
		Port:            "0",
		Env:             "test",
		MediaDir:        t.TempDir(),
		MediaBaseURL:    "/media",
		MaxUploadSizeMB: 10,
	}
	middleware.InitMiddleware(cfg)
	cache.SetClient(nil)

	blobs, err := storage.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL, cfg.MaxUploadSizeMB)
	require.NoError(t, err)

	s := NewServerWithDeps(cfg, db, nil, blobs)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	s.SetupRoutes(app)
	return s, app
}

// signupUser registers a fresh account through the API and returns its token
// and provisioned profile.
func signupUser(t *testing.T, app *fiber.App, name, username, email string) (string, models.User) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"username": username,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token, body.User
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func doMultipart(t *testing.T, app *fiber.App, method, path, token string, fields map[string]string, filename string, file []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// testPNG renders a small opaque PNG for upload tests.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	tests := []struct {
		name   string
		query  string
		limit  float64
		offset float64
	}{
		{"defaults", "", 25, 0},
		{"custom", "?limit=10&offset=30", 10, 30},
		{"clamped", "?limit=1000&offset=-5", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			var body map[string]float64
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.limit, body["limit"])
			assert.Equal(t, tt.offset, body["offset"])
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewInvalidArgumentError("bad"), http.StatusBadRequest},
		{models.NewUnauthenticatedError("no session"), http.StatusUnauthorized},
		{models.NewUnauthorizedError("not yours"), http.StatusForbidden},
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.NewUploadFailure(nil), http.StatusInternalServerError},
		{models.NewPersistFailure(nil), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusForError(tt.err))
	}
}
