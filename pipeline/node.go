package pipeline

import (
	"context"

	"github.com/rushteam/feedrank/core"
)

// Kind 节点所处阶段，用作指标标签
type Kind string

const (
	KindRecall Kind = "recall" // 产出候选帖子
	KindFilter Kind = "filter" // 按表达式剔除候选
	KindRank   Kind = "rank"   // 组装特征、模型打分并按概率排序
	KindReRank Kind = "rerank" // 截断到请求的数量
)

// Node 是打分链路的一个阶段：输入候选，输出候选。
// 节点之间只通过 items 与 RecommendContext 传递数据，不持有请求状态，可被并发请求共享。
type Node interface {
	Name() string
	Kind() Kind
	Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}
