package recommend

import (
	"fmt"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

// Format 把排好序的候选映射回帖子展示记录 {id, topic, text}，保持顺序。
// 候选 ID 不在特征表中属于内部错误。
func Format(table *feature.Table, items []*core.Item) ([]core.Post, error) {
	out := make([]core.Post, 0, len(items))
	for _, it := range items {
		row, ok := table.Lookup(it.ID)
		if !ok {
			return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInternalError,
				fmt.Sprintf("ranked post %d is not in the feature table", it.ID))
		}
		out = append(out, core.Post{ID: row.PostID, Topic: row.Topic, Text: row.Text})
	}
	return out, nil
}
