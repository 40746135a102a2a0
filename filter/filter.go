// Package filter 在打分之前剔除候选帖子。
package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/pipeline"
)

// Filter 判断一个候选是否应被剔除，返回 true 表示剔除。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// FilterNode 依次应用 Filters，任一返回 true 即剔除；保留的候选维持原顺序。
// 过滤器出错时整个请求失败，不做部分过滤。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(n.Filters) == 0 {
		return items, nil
	}
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		drop, err := n.drop(ctx, rctx, item)
		if err != nil {
			return nil, err
		}
		if !drop {
			out = append(out, item)
		}
	}
	return out, nil
}

func (n *FilterNode) drop(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	for _, f := range n.Filters {
		drop, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			return false, fmt.Errorf("%s: post %d: %w", f.Name(), item.ID, err)
		}
		if drop {
			return true, nil
		}
	}
	return false, nil
}
