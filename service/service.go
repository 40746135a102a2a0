// Package service 是外部推理服务（KServe）的 HTTP 客户端，实现 core.MLService。
package service

import (
	"fmt"
	"time"

	"github.com/rushteam/feedrank/core"
)

// Config 推理服务配置
type Config struct {
	// Protocol KServeV1 / KServeV2，空值按 V2
	Protocol     string
	Endpoint     string
	ModelName    string
	ModelVersion string
	// Timeout 单次请求超时，0 取 30s
	Timeout time.Duration
	Auth    *AuthConfig
}

// AuthConfig 请求认证
type AuthConfig struct {
	Type     string // basic / bearer / api_key
	Username string
	Password string
	Token    string
	APIKey   string
}

// New 按配置构造客户端，不发起网络请求
func New(cfg Config) (core.MLService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("service endpoint is required")
	}
	switch cfg.Protocol {
	case "":
		cfg.Protocol = KServeV2
	case KServeV1, KServeV2:
	default:
		return nil, fmt.Errorf("unsupported kserve protocol %q", cfg.Protocol)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []KServeOption{WithKServeTimeout(timeout), WithKServeProtocol(cfg.Protocol)}
	if cfg.ModelVersion != "" {
		opts = append(opts, WithKServeVersion(cfg.ModelVersion))
	}
	if cfg.Auth != nil {
		opts = append(opts, WithKServeAuth(cfg.Auth))
	}
	return NewKServeClient(cfg.Endpoint, cfg.ModelName, opts...), nil
}
