package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSaveRepository_UpsertIsIdempotent(t *testing.T) {
	truncateTables(t)
	repo := NewSaveRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "saver")
	post := createTestPost(t, user, "bookmarked")

	first, err := repo.Upsert(ctx, user.ID, post.ID)
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, user.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	saves, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, saves, 1)
}

func TestSaveRepository_ListByUserNewestFirst(t *testing.T) {
	truncateTables(t)
	repo := NewSaveRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "collector")
	p1 := createTestPost(t, user, "first")
	p2 := createTestPost(t, user, "second")

	s1, err := repo.Upsert(ctx, user.ID, p1.ID)
	require.NoError(t, err)
	s2, err := repo.Upsert(ctx, user.ID, p2.ID)
	require.NoError(t, err)
	// Force distinct timestamps; CURRENT_TIMESTAMP has second resolution.
	require.NoError(t, testDB.Model(s1).Update("created_at", time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)).Error)
	require.NoError(t, testDB.Model(s2).Update("created_at", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)).Error)

	saves, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, p2.ID, saves[0].PostID)
	assert.Equal(t, p1.ID, saves[1].PostID)
}

func TestSaveRepository_Delete(t *testing.T) {
	truncateTables(t)
	repo := NewSaveRepository(testDB)
	ctx := context.Background()

	user := createTestUser(t, "remover")
	post := createTestPost(t, user, "temp")

	save, err := repo.Upsert(ctx, user.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, save.ID))
	assert.ErrorIs(t, repo.Delete(ctx, save.ID), gorm.ErrRecordNotFound)

	_, err = repo.GetByID(ctx, save.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
