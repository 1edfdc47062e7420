package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表，为空时不发布事件
	Topics  []string `yaml:"topics"`  // Kafka 主题列表
}

// DatabaseConfigs 包含所有外部存储的配置。
type DatabaseConfigs struct {
	Redis RedisConfig `yaml:"redis"` // Redis 配置，仅在 gateway.pendingStore 为 "redis" 时使用
	Kafka KafkaConfig `yaml:"kafka"` // Kafka 配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// MappingConfig 是确定性映射服务的配置。
type MappingConfig struct {
	ServerAddress string `yaml:"serverAddress"`
}

// GatewayConfig 是意图网关的配置。
type GatewayConfig struct {
	ServerAddress string `yaml:"serverAddress"`
	BackendURL    string `yaml:"backendURL"`   // 记录后端的基础地址
	PendingTTL    string `yaml:"pendingTTL"`   // 待确认意图的存活时间，例如 "5m"
	PendingStore  string `yaml:"pendingStore"` // "memory" 或 "redis"
	RedisPrefix   string `yaml:"redisPrefix"`  // Redis 键前缀
	EventsTopic   string `yaml:"eventsTopic"`  // 意图生命周期事件的 Kafka 主题
}

// OrchestratorConfig 是流水线编排服务的配置。
type OrchestratorConfig struct {
	ServerAddress string `yaml:"serverAddress"`
	GatewayURL    string `yaml:"gatewayURL"` // 意图网关的基础地址
}

// BackendMockConfig 是模拟记录后端的配置。
type BackendMockConfig struct {
	ServerAddress string `yaml:"serverAddress"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App          AppInfo            `yaml:"app"`          // 应用程序信息
	Logger       LoggerConfig       `yaml:"logger"`       // 日志记录器配置
	Databases    DatabaseConfigs    `yaml:"databases"`    // 外部存储配置
	Middleware   MiddlewareConfig   `yaml:"middleware"`   // 中间件配置
	Mapping      MappingConfig      `yaml:"mapping"`      // 映射服务配置
	Gateway      GatewayConfig      `yaml:"gateway"`      // 网关配置
	Orchestrator OrchestratorConfig `yaml:"orchestrator"` // 编排服务配置
	BackendMock  BackendMockConfig  `yaml:"backendMock"`  // 模拟后端配置
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket"
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"`       // 熔断打开后的冷却时间，例如: "30s"
	RequestTimeout   string `yaml:"requestTimeout"` // 下游单次请求超时，例如: "10s"
}

// 默认值与原有服务端口保持一致。
const (
	DefaultBackendAddress      = ":3001"
	DefaultGatewayAddress      = ":3002"
	DefaultOrchestratorAddress = ":3003"
	DefaultMappingAddress      = ":3004"
	DefaultBackendURL          = "http://localhost:3001"
	DefaultGatewayURL          = "http://localhost:3002"
	DefaultPendingTTL          = 5 * time.Minute
	DefaultEventsTopic         = "intent_events"
	DefaultRedisPrefix         = "pending:"
)

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后、已填充默认值并应用环境变量覆盖的配置。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg, err := Parse(yamlFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides(os.Getenv)
	return cfg, nil
}

// DefaultPath 是各服务默认读取的配置文件路径（相对仓库根目录），可以用 CONFIG_PATH 覆盖。
const DefaultPath = "backend/go/internal/config/config.yaml"

// Load 读取 CONFIG_PATH（未设置时为 DefaultPath）指向的配置文件；
// 文件不存在时使用默认配置，环境变量覆盖在两种情况下都会生效。
func Load() (*AppConfig, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.ApplyEnvOverrides(os.Getenv)
		return cfg, nil
	}
	return cfg, err
}

// Parse 解析 YAML 内容并填充默认值。
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.applyDefaults()
	if _, err := cfg.Gateway.TTL(); err != nil {
		return nil, err
	}
	switch cfg.Gateway.PendingStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("未知的 pendingStore 类型: %s", cfg.Gateway.PendingStore)
	}
	return &cfg, nil
}

// Default 返回一份只包含默认值的配置，在没有配置文件时使用。
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Mapping.ServerAddress == "" {
		c.Mapping.ServerAddress = DefaultMappingAddress
	}
	if c.Gateway.ServerAddress == "" {
		c.Gateway.ServerAddress = DefaultGatewayAddress
	}
	if c.Gateway.BackendURL == "" {
		c.Gateway.BackendURL = DefaultBackendURL
	}
	if c.Gateway.PendingTTL == "" {
		c.Gateway.PendingTTL = DefaultPendingTTL.String()
	}
	if c.Gateway.PendingStore == "" {
		c.Gateway.PendingStore = "memory"
	}
	if c.Gateway.RedisPrefix == "" {
		c.Gateway.RedisPrefix = DefaultRedisPrefix
	}
	if c.Gateway.EventsTopic == "" {
		c.Gateway.EventsTopic = DefaultEventsTopic
	}
	if c.Orchestrator.ServerAddress == "" {
		c.Orchestrator.ServerAddress = DefaultOrchestratorAddress
	}
	if c.Orchestrator.GatewayURL == "" {
		c.Orchestrator.GatewayURL = DefaultGatewayURL
	}
	if c.BackendMock.ServerAddress == "" {
		c.BackendMock.ServerAddress = DefaultBackendAddress
	}
}

// ApplyEnvOverrides 使用环境变量覆盖地址类配置，变量名沿用各服务原有的约定。
func (c *AppConfig) ApplyEnvOverrides(getenv func(string) string) {
	if v := getenv("BACKEND_URL"); v != "" {
		c.Gateway.BackendURL = v
	}
	if v := getenv("GATEWAY_URL"); v != "" {
		c.Orchestrator.GatewayURL = v
	}
	if v := getenv("GATEWAY_PORT"); v != "" {
		c.Gateway.ServerAddress = portAddress(v)
	}
	if v := getenv("ORCHESTRATOR_PORT"); v != "" {
		c.Orchestrator.ServerAddress = portAddress(v)
	}
	if v := getenv("MAPPING_PORT"); v != "" {
		c.Mapping.ServerAddress = portAddress(v)
	}
	if v := getenv("PORT"); v != "" {
		c.BackendMock.ServerAddress = portAddress(v)
	}
}

func portAddress(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// TTL 解析待确认意图的存活时间。
func (g GatewayConfig) TTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(g.PendingTTL)
	if err != nil {
		return 0, fmt.Errorf("无效的 pendingTTL '%s': %w", g.PendingTTL, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("pendingTTL 必须为正数: %s", g.PendingTTL)
	}
	return ttl, nil
}
