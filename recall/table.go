// Package recall 产出候选帖子。
// 目前只有全表召回：每个请求都对特征表中的全部帖子打分。
package recall

import (
	"context"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/pipeline"
	"github.com/rushteam/feedrank/pkg/utils"
)

// TableRecall 把特征表中的全部帖子作为候选，按表内原始顺序输出。
// Item.Position 记录行号，后续特征组装与同分决胜都依赖它。
type TableRecall struct {
	Table *feature.Table
}

func (r *TableRecall) Name() string        { return "recall.table" }
func (r *TableRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 忽略上游 items，总是从整张表重新生成候选
func (r *TableRecall) Process(_ context.Context, _ *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	n := r.Table.Len()
	out := make([]*core.Item, 0, n)
	for i := 0; i < n; i++ {
		row := r.Table.At(i)
		item := core.NewItem(row.PostID, i)
		item.PutLabel("recall_source", utils.Label{Value: "table", Source: "recall"})
		out = append(out, item)
	}
	return out, nil
}

var _ pipeline.Node = (*TableRecall)(nil)
