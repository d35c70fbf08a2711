package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRunMigrations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_media_path_index.sql"),
		[]byte("CREATE INDEX IF NOT EXISTS idx_test_media_path ON media_records (path);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	applied, err := RunMigrations(db, dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	t.Run("Success - already applied migrations are skipped", func(t *testing.T) {
		applied, err := RunMigrations(db, dir, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 0, applied)
	})

	t.Run("Error - broken migration is not recorded", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "002_broken.sql"), []byte("THIS IS NOT SQL"), 0o644))

		_, err := RunMigrations(db, dir, zap.NewNop())
		assert.ErrorContains(t, err, "002_broken.sql")

		var count int64
		db.Model(&Migration{}).Where("version = ?", "002_broken.sql").Count(&count)
		assert.Zero(t, count)
	})
}
