package database

import (
	"testing"

	"lumen/internal/models"
	"lumen/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestMetricsPluginObservesQueries(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Use(MetricsPlugin{}))

	before := testutil.CollectAndCount(observability.DatabaseQueryLatency)

	account := &models.Account{Email: "metrics@example.com", Password: "x", Name: "M"}
	require.NoError(t, db.Create(account).Error)
	var got models.Account
	require.NoError(t, db.First(&got, account.ID).Error)

	// Create and query on the accounts table each add a labeled series.
	after := testutil.CollectAndCount(observability.DatabaseQueryLatency)
	assert.Greater(t, after, before)
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db := setupTestDB(t)
	for _, table := range []string{"accounts", "users", "posts", "likes", "saves"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
