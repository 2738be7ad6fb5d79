package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"check": { "safetyDistance": 5.0, "samplesPerPair": 250 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 5.0, viper.GetFloat64("check.safetyDistance"))
	assert.Equal(t, 250, viper.GetInt("check.samplesPerPair"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, 2.0, viper.GetFloat64("check.safetyDistance"))
	assert.Equal(t, 100, viper.GetInt("check.samplesPerPair"))
	assert.False(t, viper.GetBool("check.allPairs"))
	assert.Equal(t, 120, viper.GetInt("check.clusterWindowSeconds"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, 1.0, viper.GetFloat64("playback.speed"))
	assert.False(t, viper.GetBool("influx.enabled"))
	assert.False(t, viper.GetBool("graylog.enabled"))
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.Error(t, err)
}

func TestCheckOptions_FromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{"check": {"safetyDistance": 3.5, "samplesPerPair": 42, "allPairs": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	opts := CheckOptions()
	assert.Equal(t, 3.5, opts.SafetyDistance)
	assert.Equal(t, 42, opts.SamplesPerPair)
	assert.True(t, opts.AllPairs)
}
