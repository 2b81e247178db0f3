package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "effisocial", cfg.MongoDatabase)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("port: \"9000\"\nmongo_database: social\njwt_ttl: 1h\ncors_origins:\n  - http://localhost:3000\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("MONGO_DATABASE", "fromenv")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "fromenv", cfg.MongoDatabase)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxUploadBytes = 0
	assert.Error(t, cfg.Validate())
}
