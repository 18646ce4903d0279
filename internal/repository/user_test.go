package repository

import (
	"context"
	"testing"
	"time"

	"lumen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByAccountID(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "profile_owner")

	got, err := repo.GetByAccountID(ctx, user.AccountID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// No profile yet for this account: (nil, nil), not an error.
	missing, err := repo.GetByAccountID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	createTestUser(t, "findme")

	got, err := repo.GetByUsername(ctx, "findme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "findme", got.Username)

	missing, err := repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	createTestUser(t, "taken")
	err := repo.Create(ctx, &models.User{
		AccountID: 999,
		Name:      "someone else",
		Username:  "taken",
		Email:     "other@example.com",
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	u1 := createTestUser(t, "older")
	u2 := createTestUser(t, "newer")
	require.NoError(t, testDB.Model(u1).Update("created_at", time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)).Error)
	require.NoError(t, testDB.Model(u2).Update("created_at", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)).Error)

	users, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "newer", users[0].Username)
}

func TestUserRepository_GetByIDWithPosts(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "author")
	createTestPost(t, user, "first")
	createTestPost(t, user, "second")

	got, err := repo.GetByIDWithPosts(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, got.Posts, 2)
}

func TestUserRepository_Update(t *testing.T) {
	truncateTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "editable")
	user.Bio = "new bio"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Bio)
}
