package core

import "github.com/rushteam/feedrank/pkg/utils"

// Item 是链路中的一个候选帖子。
// Position 是它在特征表中的行号，同分时按行号决胜；Score 是模型给出的点赞概率。
type Item struct {
	ID       int64
	Position int
	Score    float64
	Labels   map[string]utils.Label
}

func NewItem(id int64, position int) *Item {
	return &Item{ID: id, Position: position, Labels: map[string]utils.Label{}}
}

// PutLabel 同名标签按 utils.MergeLabel 合并
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = map[string]utils.Label{}
	}
	if old, ok := it.Labels[key]; ok {
		lbl = utils.MergeLabel(old, lbl)
	}
	it.Labels[key] = lbl
}
