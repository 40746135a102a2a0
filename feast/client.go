// Package feast 通过 Feast 官方 Go SDK 读取在线特征。
// 帖子特征表可以物化在 Feast 在线存储中，feature.FeastTableLoader 启动时批量读取。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast 在线特征读取接口，测试中可替换为内存实现
type Client interface {
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)
	Close() error
}

// GetOnlineFeaturesRequest Features 为 "view:feature" 引用，EntityRows 如 [{"post_id": 1001}]
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]any
	Project    string // 空则用客户端的项目
}

// GetOnlineFeaturesResponse FeatureVectors 与 EntityRows 一一对应
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}

// FeatureVector 一个实体的特征；NULL 特征不出现在 Values 中
type FeatureVector struct {
	Values    map[string]any
	EntityRow map[string]any
}

// ClientConfig 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
}

// AuthConfig 目前只支持 Type "static"（固定 Token）
type AuthConfig struct {
	Type  string
	Token string
}

type ClientOption func(*ClientConfig)

// WithTimeout 单次调用超时
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) { c.Timeout = timeout }
}

func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) { c.Auth = auth }
}
