package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/feedrank/core"
)

// Observer 在每个 Node 执行结束后被回调，用于打点与日志。
type Observer interface {
	ObserveNode(ctx context.Context, node Node, in, out int, elapsed time.Duration, err error)
}

// Pipeline 把推荐逻辑拆成可组合的 Node 链：召回 -> 过滤 -> 排序 -> 截断。
type Pipeline struct {
	Nodes    []Node
	Observer Observer
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if p.Observer != nil {
			p.Observer.ObserveNode(ctx, node, len(cur), len(next), time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
