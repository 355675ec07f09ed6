package repository

import (
	"context"
	"testing"

	"brewshop/internal/database"
	"brewshop/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestMarkOrderCreatedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	cart := models.NewCart(models.SessionOwner("sess-1"))
	require.NoError(t, repo.Create(ctx, cart))

	flipped, err := repo.MarkOrderCreated(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkOrderCreated(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	stored, err := repo.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOrderCreated)
}

func TestMarkOrderCreatedUnknownCart(t *testing.T) {
	db := newTestDB(t)
	flipped, err := NewCartRepository(db).MarkOrderCreated(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, flipped)
}
