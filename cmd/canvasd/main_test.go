package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_FromEnv(t *testing.T) {
	cfg, err := loadConfig(envMap(map[string]string{
		"CANVAS_CONFIG":        filepath.Join(t.TempDir(), "missing.yml"),
		"CANVAS_INSTANCE_NAME": "prod",
		"REDIS_URL":            "redis://localhost:6390",
		"CANVAS_ADDR":          ":9090",
	}))
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Redis.Instance)
	assert.Equal(t, "redis://localhost:6390", cfg.Redis.URL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "creator", cfg.Canvas.Owner)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.yml")
	require.NoError(t, os.WriteFile(path, []byte(`version: "1.0"
canvas:
  owner: "alice"
redis:
  url: "redis://file:6379"
  instance: "from-file"
server:
  log_format: "json"
`), 0o644))

	cfg, err := loadConfig(envMap(map[string]string{
		"CANVAS_CONFIG": path,
		"REDIS_URL":     "redis://env:6379",
	}))
	require.NoError(t, err)
	assert.Equal(t, "redis://env:6379", cfg.Redis.URL)
	assert.Equal(t, "from-file", cfg.Redis.Instance)
	assert.Equal(t, "alice", cfg.Canvas.Owner)
	assert.Equal(t, "json", cfg.Server.LogFormat)
}

func TestLoadConfig_MissingRedis(t *testing.T) {
	_, err := loadConfig(envMap(map[string]string{
		"CANVAS_CONFIG": filepath.Join(t.TempDir(), "missing.yml"),
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL and CANVAS_INSTANCE_NAME must be set")
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	_, err := loadConfig(envMap(map[string]string{
		"CANVAS_CONFIG":        filepath.Join(t.TempDir(), "missing.yml"),
		"CANVAS_INSTANCE_NAME": "Bad_Name",
		"REDIS_URL":            "redis://localhost:6379",
	}))
	assert.Error(t, err)
}

func TestEnsureGenesis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := canvas.NewClient(&redis.Options{Addr: mr.Addr()}, "daemon")
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, ensureGenesis(ctx, client, "creator", zerolog.Nop()))

	info, err := client.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "creator", info.Owner)

	// A restart keeps the existing canvas
	require.NoError(t, client.Buy(ctx, "alice", canvas.BuyRequest{X: 0, Y: 0, Color: 5}))
	require.NoError(t, ensureGenesis(ctx, client, "someone-else", zerolog.Nop()))

	color, err := client.GetColor(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), color)

	info, err = client.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "creator", info.Owner)
}
