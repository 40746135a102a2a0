// Package model 定义打分器抽象与实现：本地逻辑回归、HTTP 模型服务、KServe 推理服务。
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

// Scorer 是排序阶段的最小抽象：输入整张特征矩阵，输出每行的正类概率。
// 实现启动时加载一次，之后只读，可被并发请求共享。
type Scorer interface {
	Name() string
	// FeatureColumns 返回模型训练时的输入列（按顺序）
	FeatureColumns() []string
	// Predict 返回与矩阵行一一对应的概率
	Predict(ctx context.Context, m *feature.Matrix) ([]float64, error)
}

// ErrInvalidOutput 模型输出与输入不对应或概率越界
var ErrInvalidOutput = core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidOutput, "model: invalid output")

// Check 检查矩阵列与模型列完全一致（名称与顺序），不一致返回 *core.FeatureMismatchError。
func Check(s Scorer, m *feature.Matrix) error {
	return feature.CompareColumns("matrix/model", s.FeatureColumns(), m.Columns)
}

// Validate 检查输出：每行一个概率，且落在 [0, 1]。
func Validate(probs []float64, rows int) error {
	if len(probs) != rows {
		return fmt.Errorf("%w: got %d probabilities for %d rows", ErrInvalidOutput, len(probs), rows)
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %v at row %d", ErrInvalidOutput, p, i)
		}
	}
	return nil
}

// Score 依次执行 Check、Predict、Validate。空矩阵不调用模型。
func Score(ctx context.Context, s Scorer, m *feature.Matrix) ([]float64, error) {
	if err := Check(s, m); err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return []float64{}, nil
	}
	probs, err := s.Predict(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s predict: %w", s.Name(), err)
	}
	if err := Validate(probs, m.Len()); err != nil {
		return nil, err
	}
	return probs, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
