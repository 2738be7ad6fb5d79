// internal/storage/factory.go
package storage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/flytrace/deconflict/internal/config"
	"github.com/flytrace/deconflict/internal/database"
	gormstorage "github.com/flytrace/deconflict/internal/storage/gorm"
	"github.com/flytrace/deconflict/internal/storage/memory"
	sqlitestorage "github.com/flytrace/deconflict/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(log zerolog.Logger) (Backend, error) {
	switch storageType := viper.GetString("storage.type"); storageType {
	case "postgres":
		manager := database.NewManager(log)
		if err := manager.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:     manager.DB,
			Logger: log,
		}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: time.Duration(viper.GetInt("storage.sqlite.dumpIntervalSeconds")) * time.Second,
		}, log)
	case "memory":
		return memory.New(config.MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
