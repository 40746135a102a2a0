package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

// RPCModel 是通过 HTTP 调用外部模型服务的 Scorer 实现（XGBoost / CatBoost 服务等）。
// 调用经过熔断器：连续失败达到阈值后快速失败，不做重试。
//
// 请求格式（JSON）：
//
//	{"model": "catboost", "columns": ["topic", "age", ...], "rows": [["movie", 34, ...], ...]}
//
// 响应格式（JSON）：
//
//	{"probabilities": [0.85, 0.72, ...]}
type RPCModel struct {
	name     string
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client

	columns []string
	breaker *gobreaker.CircuitBreaker[[]float64]
}

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`      // 半开状态允许的请求数
	Interval         time.Duration `koanf:"interval"`          // 闭合状态计数清零周期
	Timeout          time.Duration `koanf:"timeout"`           // 打开状态持续时间
	FailureThreshold uint32        `koanf:"failure_threshold"` // 连续失败多少次后打开
}

// DefaultBreakerConfig 默认熔断配置
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// RPCOption RPCModel 选项
type RPCOption func(*RPCModel)

// WithRPCHTTPClient 设置自定义 HTTP 客户端
func WithRPCHTTPClient(client *http.Client) RPCOption {
	return func(m *RPCModel) {
		m.Client = client
	}
}

// WithBreaker 设置熔断器参数
func WithBreaker(cfg BreakerConfig) RPCOption {
	return func(m *RPCModel) {
		m.breaker = newBreaker(m.name, cfg)
	}
}

func NewRPCModel(name, endpoint string, columns []string, timeout time.Duration, opts ...RPCOption) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	m := &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client:   &http.Client{Timeout: timeout},
		columns:  append([]string(nil), columns...),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		m.breaker = newBreaker(name, DefaultBreakerConfig())
	}
	return m
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[[]float64] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        "model:" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

func (m *RPCModel) Name() string {
	return m.name
}

func (m *RPCModel) FeatureColumns() []string {
	return append([]string(nil), m.columns...)
}

// BreakerState 返回熔断器状态（用于健康检查）
func (m *RPCModel) BreakerState() gobreaker.State {
	return m.breaker.State()
}

// Predict 调用远程模型服务进行批量预测。
func (m *RPCModel) Predict(ctx context.Context, x *feature.Matrix) ([]float64, error) {
	if x.Len() == 0 {
		return []float64{}, nil
	}
	probs, err := m.breaker.Execute(func() ([]float64, error) {
		return m.call(ctx, x)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeUnavailable, fmt.Sprintf("model %s: %v", m.name, err))
	}
	return probs, err
}

type rpcRequest struct {
	Model   string            `json:"model"`
	Columns []string          `json:"columns"`
	Rows    [][]feature.Value `json:"rows"`
}

type rpcResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

func (m *RPCModel) call(ctx context.Context, x *feature.Matrix) ([]float64, error) {
	jsonData, err := json.Marshal(rpcRequest{Model: m.name, Columns: x.Columns, Rows: x.Rows})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result.Probabilities, nil
}
