package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flytrace/deconflict/internal/model"
)

func TestGetSqliteDBStandalone_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deconflict.db")

	db, err := GetSqliteDBStandalone(path)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.DatabaseModels...))

	mission := model.Mission{Name: "standalone test"}
	require.NoError(t, db.Create(&mission).Error)

	var count int64
	require.NoError(t, db.Model(&model.Mission{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.DatabaseModels...))

	mission := model.Mission{Name: "dump test"}
	require.NoError(t, db.Create(&mission).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// The dump is a complete snapshot, readable on its own.
	dumped, err := GetSqliteDBStandalone(path)
	require.NoError(t, err)

	var got model.Mission
	require.NoError(t, dumped.Where("name = ?", "dump test").First(&got).Error)
	assert.Equal(t, "dump test", got.Name)
}

func TestDumpMemoryDBToDisk_EmptyPath(t *testing.T) {
	db, err := GetSqliteDBStandalone("")
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestManagerDumpMemoryToDisk(t *testing.T) {
	m := NewManager(zerolog.Nop())

	db, err := m.GetSqliteDB("")
	require.NoError(t, err)
	m.DB = db
	require.NoError(t, db.AutoMigrate(model.DatabaseModels...))

	mission := model.Mission{Name: "manager dump"}
	require.NoError(t, db.Create(&mission).Error)

	require.Error(t, m.DumpMemoryToDisk(), "dump without a file path must fail")

	m.SqliteFilePath = filepath.Join(t.TempDir(), "manager.db")
	require.NoError(t, m.DumpMemoryToDisk())

	dumped, err := GetSqliteDBStandalone(m.SqliteFilePath)
	require.NoError(t, err)

	var got model.Mission
	require.NoError(t, dumped.Where("name = ?", "manager dump").First(&got).Error)
	assert.Equal(t, "manager dump", got.Name)
}
