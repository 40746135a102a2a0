// Package rerank 处理排序之后的候选。
package rerank

import (
	"context"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/pipeline"
)

// TopNNode 截取前 N 个候选；N <= 0 返回空，N 超过候选数时原样返回。
// 它只截断不重排，上游 rank.ModelNode 已按概率降序排好。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	switch {
	case n.N <= 0:
		return []*core.Item{}, nil
	case len(items) > n.N:
		return items[:n.N], nil
	default:
		return items, nil
	}
}
