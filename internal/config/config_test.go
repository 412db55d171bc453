package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 清空会影响加载结果的环境变量
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "CONFIG_DIR", "API_PORT", "CARBON_HOME", "REDIS_URL",
		"REGISTRY_BACKEND", "REGISTRY_FILE", "REGISTRY_CACHE_TTL",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL",
		"JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func useConfigDir(t *testing.T, dir string) {
	t.Helper()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	useConfigDir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "9164", cfg.APIPort)
	assert.Equal(t, ".", cfg.RuntimeHome)
	assert.Equal(t, RegistryMemory, cfg.Registry.Backend)
	assert.Equal(t, 5*time.Second, cfg.Registry.CacheTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.LoadedFrom)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	useConfigDir(t, dir)

	yamlContent := `api_server:
  port: "9200"
runtime:
  home: /opt/mi
registry:
  backend: file
  cache_ttl: 30s
redis:
  host: redis.internal
  port: 6380
  db: 2
minio:
  endpoint: minio:9000
  bucket: capps
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(yamlContent), 0644))

	t.Setenv("APP_ENV", "test")
	t.Setenv("API_PORT", "9300")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MINIO_ACCESS_KEY", "ak")
	t.Setenv("MINIO_SECRET_KEY", "sk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsTest())
	assert.Equal(t, "9300", cfg.APIPort)
	assert.Equal(t, "/opt/mi", cfg.RuntimeHome)
	assert.Equal(t, RegistryFile, cfg.Registry.Backend)
	assert.Equal(t, filepath.Join("/opt/mi", "repository", "deployment", "server", "registry.yaml"), cfg.Registry.File)
	assert.Equal(t, 30*time.Second, cfg.Registry.CacheTTL)
	assert.Equal(t, "redis://redis.internal:6380/2", cfg.RedisURL)
	assert.True(t, cfg.MinIO.Enabled())
	assert.Equal(t, "capps", cfg.MinIO.Bucket)
	assert.Equal(t, "ak", cfg.MinIO.AccessKey)
	assert.Equal(t, "sk", cfg.MinIO.SecretKey)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "test.yaml"), cfg.LoadedFrom)
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	useConfigDir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev.yaml"), []byte("api_server: [oops"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestParseEnv(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"test", EnvTest},
		{"prod", EnvProduction},
		{"Production", EnvProduction},
		{"dev", EnvDevelopment},
		{"", EnvDevelopment},
		{"staging", EnvDevelopment},
	}

	for _, tt := range tests {
		if got := parseEnv(tt.in); got != tt.want {
			t.Errorf("parseEnv(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
