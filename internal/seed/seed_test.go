package seed

import (
	"testing"

	"lumen/internal/database"
	"lumen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedCreatesCoherentData(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Seed(Options{NumUsers: 5, NumPosts: 12}))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 5, userCount)
	assert.EqualValues(t, 12, postCount)

	// Every post belongs to a seeded user and carries denormalized creator data.
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.NotZero(t, p.CreatorID)
		assert.NotEmpty(t, p.CreatorName)
		assert.NotEmpty(t, p.Tags)
	}
}

func TestClearAll(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Seed(Options{NumUsers: 2, NumPosts: 4}))
	require.NoError(t, s.ClearAll())

	var count int64
	require.NoError(t, db.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(t, count)
}
