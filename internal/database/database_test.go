package database

import (
	"path/filepath"
	"testing"

	"taskbuddy-api/internal/config"
	"taskbuddy-api/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpen_MigratesTables(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable(&models.Task{}))
	require.True(t, db.Migrator().HasTable(&models.User{}))
}

func TestLogLevel(t *testing.T) {
	require.Equal(t, logger.Silent, LogLevel("SILENT"))
	require.Equal(t, logger.Info, LogLevel("info"))
	require.Equal(t, logger.Warn, LogLevel("bogus"))
}
