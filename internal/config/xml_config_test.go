package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensorspy.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config file should be written")

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "data/cache"), cfg.Storage.CacheDirectory)
	assert.Equal(t, filepath.Join(dir, "sensors.yaml"), cfg.Capture.SensorCatalog)
	assert.Equal(t, "mounted", cfg.Storage.MediumState)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensorspy.config")
	xmlData := `<?xml version="1.0" encoding="UTF-8"?>
<SensorSpy>
  <Server><Port>9100</Port><BindAddress>127.0.0.1</BindAddress></Server>
  <Storage>
    <CacheDirectory>/var/spy/cache</CacheDirectory>
    <MediumState>mounted_ro</MediumState>
  </Storage>
  <Capture><DeviceModel>Pixel 6</DeviceModel></Capture>
</SensorSpy>`
	require.NoError(t, os.WriteFile(path, []byte(xmlData), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.GetServerAddr())
	assert.Equal(t, "/var/spy/cache", cfg.Storage.CacheDirectory)
	assert.Equal(t, "mounted_ro", cfg.Storage.MediumState)
	assert.Equal(t, "Pixel 6", cfg.Capture.DeviceModel)
	// fields missing from the file keep their defaults
	assert.Equal(t, filepath.Join(dir, "data/files"), cfg.Storage.FilesDirectory)
	assert.Equal(t, 60, cfg.Capture.SessionTimeoutMinutes)
}

func TestLoadConfig_InvalidXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.config")
	require.NoError(t, os.WriteFile(path, []byte("<SensorSpy><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DATA_DIR", "/srv/spy")
	t.Setenv("STORAGE_STATE", "unmounted")
	t.Setenv("SENSOR_CATALOG", "/etc/spy/sensors.yaml")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "sensorspy.config"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/srv/spy/cache", cfg.Storage.CacheDirectory)
	assert.Equal(t, "/srv/spy/files", cfg.Storage.FilesDirectory)
	assert.Equal(t, "unmounted", cfg.Storage.MediumState)
	assert.Equal(t, "/etc/spy/sensors.yaml", cfg.Capture.SensorCatalog)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.Storage.CacheDirectory, cfg.Storage.FilesDirectory, cfg.Storage.ArchiveDirectory} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
