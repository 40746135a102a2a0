package feature

import (
	"fmt"
	"strconv"
)

// LabelEncoder Label 编码（标签编码）
// 将分类标签映射为整数，供只接受稠密数值输入的推理服务使用。
// 已知类别编码为 1, 2, 3, ...（按词表顺序），未知类别编码为 0。
type LabelEncoder struct {
	LabelMap map[string]map[string]int // 每个列名对应的类别到整数的映射
}

// NewLabelEncoder 创建 Label 编码器
func NewLabelEncoder(labelMap map[string]map[string]int) *LabelEncoder {
	return &LabelEncoder{
		LabelMap: labelMap,
	}
}

// NewLabelEncoderFromSchema 用 schema 的词表构造编码器
func NewLabelEncoderFromSchema(s *Schema) *LabelEncoder {
	labelMap := make(map[string]map[string]int, len(s.Categories))
	for col, cats := range s.Categories {
		m := make(map[string]int, len(cats))
		for i, c := range cats {
			m[c] = i + 1
		}
		labelMap[col] = m
	}
	return NewLabelEncoder(labelMap)
}

// Encode 编码单个值。
// 数值原样返回；分类值查词表，没有词表的列尝试按数字解析（如 exp_group "2"）。
func (e *LabelEncoder) Encode(col string, v Value) (float64, error) {
	if !v.IsCategorical() {
		return v.Num, nil
	}
	if e != nil {
		if labels, ok := e.LabelMap[col]; ok {
			return float64(labels[v.Cat]), nil
		}
	}
	f, err := strconv.ParseFloat(v.Cat, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: no vocabulary for categorical value %q", col, v.Cat)
	}
	return f, nil
}
