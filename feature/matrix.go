package feature

import "fmt"

// Matrix 是一次请求的打分上下文：每个候选帖子一行，列顺序与模型一致。
// 每个请求单独构造，响应后丢弃。
type Matrix struct {
	Columns []string
	PostIDs []int64
	Rows    [][]Value
}

// Len 返回行数
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Column 返回列下标，不存在返回 -1
func (m *Matrix) Column(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Dense 把矩阵编码为稠密数值矩阵（分类列经 enc 标签编码）。
func (m *Matrix) Dense(enc *LabelEncoder) ([][]float64, error) {
	out := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(m.Columns))
		}
		dense := make([]float64, len(row))
		for j, v := range row {
			f, err := enc.Encode(m.Columns[j], v)
			if err != nil {
				return nil, fmt.Errorf("post %d: %w", m.PostIDs[i], err)
			}
			dense[j] = f
		}
		out[i] = dense
	}
	return out, nil
}
