// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据只存在环境变量中（JWT_SECRET、MINIO_ACCESS_KEY、MINIO_SECRET_KEY），YAML 中不存储任何密钥。
//
// 配置路径确定策略：
//  1. SetConfigDir（--config 命令行参数）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/capp-admin/
//     - dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// Registry 后端类型
const (
	RegistryMemory = "memory"
	RegistryFile   = "file"
	RegistryRedis  = "redis"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Registry  RegistryConfig  `yaml:"registry"`
	Redis     RedisConfig     `yaml:"redis"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`

	loadedFrom string
}

// APIServerConfig 管理 API 监听配置
type APIServerConfig struct {
	Port string `yaml:"port"`
}

// RuntimeConfig 集成运行时配置
type RuntimeConfig struct {
	Home string `yaml:"home"` // 运行时主目录（CARBON_HOME），部署目录位于其下
}

// RegistryConfig 部署注册表配置
type RegistryConfig struct {
	Backend  string        `yaml:"backend"`   // memory | file | redis
	File     string        `yaml:"file"`      // file 后端的快照文件路径
	CacheTTL time.Duration `yaml:"cache_ttl"` // 快照缓存时长（redis 后端）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

// MinIOConfig MinIO 对象存储配置
// 注意：AccessKey/SecretKey 只从环境变量读取
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Enabled 是否启用 CApp 归档
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig 认证配置
// 注意：JWTSecret 只从 JWT_SECRET 环境变量读取
type AuthConfig struct {
	JWTSecret string `yaml:"-"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env         Environment
	APIPort     string
	RuntimeHome string
	Registry    RegistryConfig
	RedisURL    string
	RedisPrefix string
	MinIO       MinIOConfig
	Auth        AuthConfig
	Log         LogConfig
	LoadedFrom  string
}
