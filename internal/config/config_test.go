package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "data/labreserve.db", cfg.Database.Path)
	assert.Equal(t, 14, cfg.Booking.WindowDays)
	assert.Equal(t, 4, cfg.BSC.Cabinets)
	assert.Equal(t, 5, cfg.BSC.SlotsPerDay)
	assert.Equal(t, "capacity", cfg.IHC.Mode)
	assert.Equal(t, 3, cfg.IHC.TrayCap)
	assert.Equal(t, 7, cfg.Freezer.OverdueAfterDays)
	assert.Equal(t, 12, cfg.Session.TTLHours)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("LAB_DB_PATH", "/tmp/lab.db")

	cfg, err := Load(writeConfig(t, "database:\n  path: ${LAB_DB_PATH}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lab.db", cfg.Database.Path)
}

func TestLoad_IHCMode(t *testing.T) {
	cfg, err := Load(writeConfig(t, "ihc:\n  mode: exclusive\n"))
	require.NoError(t, err)
	assert.Equal(t, "exclusive", cfg.IHC.Mode)

	_, err = Load(writeConfig(t, "ihc:\n  mode: both\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
