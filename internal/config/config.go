package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/flytrace/deconflict/internal/deconflict"
)

// ConfigFileName is the JSON config file the engine looks for.
const ConfigFileName = "deconflict.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./deconflictlogs")

	viper.SetDefault("check.safetyDistance", deconflict.DefaultSafetyDistance)
	viper.SetDefault("check.samplesPerPair", 100)
	viper.SetDefault("check.allPairs", false)
	viper.SetDefault("check.clusterWindowSeconds", 120)
	viper.SetDefault("check.clusterRadius", 50.0)

	viper.SetDefault("playback.speed", 1.0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./missions")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.dumpPath", "./deconflict.db")
	viper.SetDefault("storage.sqlite.dumpIntervalSeconds", 60)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "deconflict")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.url", "http://localhost:5000")
	viper.SetDefault("api.key", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.exportIntervalSeconds", 30)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "deconflict-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// CheckOptions builds the engine options from the loaded configuration.
// They are read once here and threaded explicitly; the engine packages
// never consult viper themselves.
func CheckOptions() deconflict.Options {
	return deconflict.Options{
		SafetyDistance: viper.GetFloat64("check.safetyDistance"),
		SamplesPerPair: viper.GetInt("check.samplesPerPair"),
		AllPairs:       viper.GetBool("check.allPairs"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
