package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/service"
)

// 模型类型
const (
	TypeLR     = "lr"
	TypeRPC    = "rpc"
	TypeKServe = "kserve"
)

// Config 打分器配置
type Config struct {
	Type     string        `koanf:"type"`     // lr / rpc / kserve
	Name     string        `koanf:"name"`     // 模型名称（rpc / kserve）
	Path     string        `koanf:"path"`     // LR 产物路径
	Endpoint string        `koanf:"endpoint"` // rpc / kserve 服务地址
	Protocol string        `koanf:"protocol"` // kserve 协议：v1 / v2
	Timeout  time.Duration `koanf:"timeout"`  // 单次调用超时
	Breaker  BreakerConfig `koanf:"breaker"`
}

// Load 按配置构造打分器（启动时调用一次），失败包装为 core.StartupError。
// rpc / kserve 模型的输入列取自 schema。
func Load(ctx context.Context, cfg Config, schema *feature.Schema) (Scorer, error) {
	s, err := load(ctx, cfg, schema)
	if err != nil {
		return nil, core.NewStartupError("model", err)
	}
	return s, nil
}

func load(ctx context.Context, cfg Config, schema *feature.Schema) (Scorer, error) {
	switch cfg.Type {
	case TypeLR:
		return LoadLRModel(cfg.Path)
	case TypeRPC:
		if schema == nil {
			return nil, fmt.Errorf("rpc model requires a schema")
		}
		name := cfg.Name
		if name == "" {
			name = TypeRPC
		}
		return NewRPCModel(name, cfg.Endpoint, schema.FeatureColumns, cfg.Timeout, WithBreaker(cfg.Breaker)), nil
	case TypeKServe:
		if schema == nil {
			return nil, fmt.Errorf("kserve model requires a schema")
		}
		svc, err := service.New(service.Config{
			Protocol:     cfg.Protocol,
			Endpoint:     cfg.Endpoint,
			ModelName:    cfg.Name,
			ModelVersion: schema.ModelVersion,
			Timeout:      cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := svc.Health(ctx); err != nil {
			return nil, fmt.Errorf("kserve health: %w", err)
		}
		return NewServiceModel(cfg.Name, svc, schema), nil
	default:
		return nil, fmt.Errorf("unknown model type %q", cfg.Type)
	}
}
