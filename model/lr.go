package model

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/feedrank/feature"
)

// LRModel 实现了逻辑回归 (Logistic Regression) 模型。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + X·w + sum(CategoricalWeight[col][label])
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// 数值列走矩阵乘法；分类列按标签查权重（one-hot 等价），未见过的标签贡献为 0。
type LRModel struct {
	Version            string
	Bias               float64
	Columns            []string
	Weights            map[string]float64
	CategoricalWeights map[string]map[string]float64

	numIdx []int     // 数值列在 Columns 中的下标
	numW   []float64 // 与 numIdx 对应的权重
	catIdx []int     // 分类列在 Columns 中的下标
}

// lrArtifact 是训练侧导出的 JSON 产物
type lrArtifact struct {
	Version            string                        `json:"version"`
	Bias               float64                       `json:"bias"`
	FeatureColumns     []string                      `json:"feature_columns"`
	Weights            map[string]float64            `json:"weights"`
	CategoricalWeights map[string]map[string]float64 `json:"categorical_weights"`
}

// LoadLRModel 从 JSON 文件加载
func LoadLRModel(path string) (*LRModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw lrArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lr artifact: %w", err)
	}
	return NewLRModel(raw.Version, raw.Bias, raw.FeatureColumns, raw.Weights, raw.CategoricalWeights)
}

// NewLRModel 构造并校验模型：每一列恰好属于数值权重或分类权重之一。
func NewLRModel(version string, bias float64, columns []string, weights map[string]float64, catWeights map[string]map[string]float64) (*LRModel, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("lr: feature_columns is empty")
	}
	m := &LRModel{
		Version:            version,
		Bias:               bias,
		Columns:            append([]string(nil), columns...),
		Weights:            weights,
		CategoricalWeights: catWeights,
	}
	known := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		if _, dup := known[col]; dup {
			return nil, fmt.Errorf("lr: duplicate column %q", col)
		}
		known[col] = struct{}{}

		w, isNum := weights[col]
		_, isCat := catWeights[col]
		switch {
		case isNum && isCat:
			return nil, fmt.Errorf("lr: column %q has both numeric and categorical weights", col)
		case isNum:
			m.numIdx = append(m.numIdx, i)
			m.numW = append(m.numW, w)
		case isCat:
			m.catIdx = append(m.catIdx, i)
		default:
			return nil, fmt.Errorf("lr: no weight for column %q", col)
		}
	}
	for col := range weights {
		if _, ok := known[col]; !ok {
			return nil, fmt.Errorf("lr: weight for unknown column %q", col)
		}
	}
	for col := range catWeights {
		if _, ok := known[col]; !ok {
			return nil, fmt.Errorf("lr: weight for unknown column %q", col)
		}
	}
	return m, nil
}

func (m *LRModel) Name() string { return "lr" }

func (m *LRModel) FeatureColumns() []string {
	return append([]string(nil), m.Columns...)
}

func (m *LRModel) Predict(ctx context.Context, x *feature.Matrix) ([]float64, error) {
	if err := Check(m, x); err != nil {
		return nil, err
	}
	n := x.Len()
	z := make([]float64, n)
	for i := range z {
		z[i] = m.Bias
	}
	if n == 0 {
		return z, nil
	}

	if k := len(m.numIdx); k > 0 {
		data := make([]float64, 0, n*k)
		for i, row := range x.Rows {
			for _, j := range m.numIdx {
				v := row[j]
				if v.IsCategorical() {
					return nil, fmt.Errorf("post %d: column %q is categorical, model expects numeric", x.PostIDs[i], m.Columns[j])
				}
				data = append(data, v.Num)
			}
		}
		var out mat.VecDense
		out.MulVec(mat.NewDense(n, k, data), mat.NewVecDense(k, m.numW))
		for i := range z {
			z[i] += out.AtVec(i)
		}
	}

	for _, j := range m.catIdx {
		weights := m.CategoricalWeights[m.Columns[j]]
		for i, row := range x.Rows {
			z[i] += weights[row[j].AsCategorical().Cat]
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range z {
		z[i] = sigmoid(z[i])
	}
	return z, nil
}
