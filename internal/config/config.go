package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 {env}.yaml
// 3. 环境变量覆盖，构建最终配置
func Load() (*Config, error) {
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))

	yamlCfg, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}
	return build(env, yamlCfg), nil
}

// defaultYAMLConfig 代码默认值
func defaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		APIServer: APIServerConfig{Port: "9164"},
		Runtime:   RuntimeConfig{Home: "."},
		Registry:  RegistryConfig{Backend: RegistryMemory, CacheTTL: 5 * time.Second},
		Redis:     RedisConfig{Host: "localhost", Port: 6379, DB: 0, Prefix: "capp:registry"},
		MinIO:     MinIOConfig{Bucket: "carbonapps"},
		Log:       LogConfig{Level: "info", Format: "text", Output: "stdout"},
	}
}

// loadYAMLConfig 加载 YAML 配置文件（不存在时使用默认值）
func loadYAMLConfig(env Environment) (*YAMLConfig, error) {
	cfg := defaultYAMLConfig()

	path := findConfigFile(env)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.loadedFrom = path
	return cfg, nil
}

// build 合并 YAML 与环境变量
func build(env Environment, y *YAMLConfig) *Config {
	cfg := &Config{
		Env:         env,
		APIPort:     getEnv("API_PORT", y.APIServer.Port),
		RuntimeHome: getEnv("CARBON_HOME", y.Runtime.Home),
		Registry:    y.Registry,
		RedisURL:    getEnv("REDIS_URL", buildRedisURL(y.Redis)),
		RedisPrefix: y.Redis.Prefix,
		MinIO:       y.MinIO,
		Auth:        AuthConfig{JWTSecret: os.Getenv("JWT_SECRET")},
		Log:         y.Log,
		LoadedFrom:  y.loadedFrom,
	}

	cfg.Registry.Backend = strings.ToLower(getEnv("REGISTRY_BACKEND", cfg.Registry.Backend))
	cfg.Registry.File = getEnv("REGISTRY_FILE", cfg.Registry.File)
	if v := os.Getenv("REGISTRY_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Registry.CacheTTL = d
		} else {
			log.Printf("[config] invalid REGISTRY_CACHE_TTL %q: %v", v, err)
		}
	}
	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.MinIO.UseSSL, _ = strconv.ParseBool(v)
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if cfg.Registry.Backend == RegistryFile && cfg.Registry.File == "" {
		cfg.Registry.File = filepath.Join(cfg.RuntimeHome, "repository", "deployment", "server", "registry.yaml")
	}
	return cfg
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(redis RedisConfig) string {
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（不含密钥）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %s, Home: %s, Registry: %s, Archive: %t, Auth: %t}",
		c.Env, c.APIPort, c.RuntimeHome, c.Registry.Backend, c.MinIO.Enabled(), c.Auth.JWTSecret != "")
}
