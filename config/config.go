// Package config 加载服务配置：结构体默认值 -> YAML 文件 -> 环境变量，后者覆盖前者。
//
// 环境变量形如 FEEDRANK_SERVER_PORT（对应 server.port），
// 另外兼容 POSTGRES_USERNAME / POSTGRES_PASSWORD / POSTGRES_HOST / POSTGRES_PORT / POSTGRES_DATABASE。
package config

import (
	"fmt"
	"time"

	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/logging"
	"github.com/rushteam/feedrank/model"
	"github.com/rushteam/feedrank/store"
	"github.com/rushteam/feedrank/store/postgres"
)

// 特征表来源
const (
	SourcePostgres = "postgres"
	SourceParquet  = "parquet"
	SourceRedis    = "redis"
	SourceFeast    = "feast"
)

// Config 是服务的完整配置
type Config struct {
	Server    ServerConfig       `koanf:"server"`
	Log       logging.Config     `koanf:"log"`
	Database  postgres.Config    `koanf:"database"`
	Redis     store.RedisOptions `koanf:"redis"`
	Feast     FeastConfig        `koanf:"feast"`
	Features  FeaturesConfig     `koanf:"features"`
	Schema    SchemaConfig       `koanf:"schema"`
	Model     model.Config       `koanf:"model"`
	Recommend RecommendConfig    `koanf:"recommend"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	EnableMetrics     bool          `koanf:"enable_metrics"`
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FeastConfig Feast 在线特征服务配置
type FeastConfig struct {
	Endpoint  string        `koanf:"endpoint"`
	Project   string        `koanf:"project"`
	Token     string        `koanf:"token"`
	EntityKey string        `koanf:"entity_key"`
	Features  []string      `koanf:"features"`
	Timeout   time.Duration `koanf:"timeout"`
}

// FeaturesConfig 帖子特征表配置
type FeaturesConfig struct {
	// Source 来源：postgres / parquet / redis / feast
	Source string `koanf:"source"`
	// Table Postgres 表名
	Table string `koanf:"table"`
	// Path Parquet 文件路径
	Path string `koanf:"path"`
	// KeyPrefix Redis key 前缀
	KeyPrefix feature.KeyPrefix `koanf:"key_prefix"`
	// Columns 原始记录中的 ID / topic / text 列名
	Columns feature.ColumnNames `koanf:"columns"`
	// LoadTimeout 启动加载超时
	LoadTimeout time.Duration `koanf:"load_timeout"`
	// Workers / ChunkSize 特征组装并发度
	Workers   int `koanf:"workers"`
	ChunkSize int `koanf:"chunk_size"`
}

// SchemaConfig 特征 schema 配置
type SchemaConfig struct {
	// Source 本地文件路径或 http(s) 地址
	Source  string        `koanf:"source"`
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig 推荐接口配置
type RecommendConfig struct {
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// FilterExpr 候选过滤表达式（CEL），为空不过滤
	FilterExpr string `koanf:"filter_expr"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			RateLimitRequests: 600,
			RateLimitWindow:   time.Minute,
			EnableMetrics:     true,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Database: postgres.Config{
			Host:     "localhost",
			Port:     5432,
			MaxConns: 10,
		},
		Redis: store.RedisOptions{
			Addr: "localhost:6379",
		},
		Feast: FeastConfig{
			EntityKey: "post_id",
			Timeout:   10 * time.Second,
		},
		Features: FeaturesConfig{
			Source:      SourcePostgres,
			Table:       postgres.DefaultFeatureTable,
			KeyPrefix:   feature.KeyPrefix{IDs: "post:features:ids", Item: "post:features:"},
			Columns:     feature.ColumnNames{}.WithDefaults(),
			LoadTimeout: 5 * time.Minute,
		},
		Schema: SchemaConfig{
			Source:  "schema.yaml",
			Timeout: 10 * time.Second,
		},
		Model: model.Config{
			Type:    model.TypeLR,
			Path:    "model.json",
			Timeout: 5 * time.Second,
			Breaker: model.DefaultBreakerConfig(),
		},
		Recommend: RecommendConfig{
			RequestTimeout: 5 * time.Second,
		},
	}
}
