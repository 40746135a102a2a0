package rank

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/model"
	"github.com/rushteam/feedrank/pipeline"
	"github.com/rushteam/feedrank/pkg/utils"
)

// ModelNode 对全部候选组装特征、批量打分，并按概率降序重排。
// - 写入 labels：rank_model
// - 更新 item.Score
// - 同分候选保持特征表中的先后顺序
type ModelNode struct {
	Assembler *feature.Assembler
	Scorer    model.Scorer
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	rows := make([]int, len(items))
	for i, it := range items {
		rows[i] = it.Position
	}
	m, err := n.Assembler.Assemble(ctx, rctx.User, rctx.Time, rows)
	if err != nil {
		return nil, err
	}
	probs, err := model.Score(ctx, n.Scorer, m)
	if err != nil {
		return nil, err
	}

	// 候选按 Position 升序进入时，TopK 的下标决胜即表内顺序决胜
	order := TopK(probs, len(probs))
	out := make([]*core.Item, 0, len(order))
	for _, i := range order {
		it := items[i]
		if m.PostIDs[i] != it.ID {
			return nil, fmt.Errorf("rank: row %d is post %d, want %d", i, m.PostIDs[i], it.ID)
		}
		it.Score = probs[i]
		it.PutLabel("rank_model", utils.Label{Value: n.Scorer.Name(), Source: "rank"})
		out = append(out, it)
	}
	return out, nil
}
