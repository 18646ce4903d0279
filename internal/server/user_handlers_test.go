package server

import (
	"fmt"
	"net/http"
	"testing"

	"lumen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, user := signupUser(t, app, "Jane", "jane", "jane@example.com")
	originalAvatar := user.ImageID

	resp := doMultipart(t, app, http.MethodPut, "/api/users/me", token, map[string]string{
		"name": "Jane D.",
		"bio":  "street photography",
	}, "avatar.png", testPNG(t, 32, 32))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Jane D.", updated.Name)
	assert.Equal(t, "street photography", updated.Bio)
	assert.NotEqual(t, originalAvatar, updated.ImageID)

	// Bio-only update keeps the avatar.
	resp = doMultipart(t, app, http.MethodPut, "/api/users/me", token, map[string]string{
		"bio": "landscapes now",
	}, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again models.User
	decodeBody(t, resp, &again)
	assert.Equal(t, "landscapes now", again.Bio)
	assert.Equal(t, updated.ImageID, again.ImageID)
}

func TestGetAllUsers(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Jane", "jane", "jane@example.com")
	signupUser(t, app, "Eve", "eve", "eve@example.com")

	resp := doJSON(t, app, http.MethodGet, "/api/users/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Users []models.User `json:"users"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Users, 2)
}

func TestGetUserProfileWithPosts(t *testing.T) {
	_, app := newTestServer(t)
	token, user := signupUser(t, app, "Jane", "jane", "jane@example.com")

	resp := doMultipart(t, app, http.MethodPost, "/api/posts", token,
		map[string]string{"caption": "portfolio piece"}, "photo.png", testPNG(t, 16, 16))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile models.User
	decodeBody(t, resp, &profile)
	assert.Equal(t, "jane", profile.Username)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "portfolio piece", profile.Posts[0].Caption)
}

func TestGetUserProfileNotFound(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Jane", "jane", "jane@example.com")

	resp := doJSON(t, app, http.MethodGet, "/api/users/999", token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeMediaTraversalRejected(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/media/f/%2E%2E/secrets.yml", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
