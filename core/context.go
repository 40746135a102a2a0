package core

import (
	"time"

	"github.com/rushteam/feedrank/pkg/utils"
)

// RecommendContext 承载一次推荐请求的用户与时间信息，贯穿整个 Pipeline 透传。
// 每个请求单独构造，不在请求之间共享。
type RecommendContext struct {
	UserID int64

	// User 是从数据存储读取的用户属性，特征组装时广播到每个候选行
	User *User

	// Time 是请求时间，派生 month / year / hour 特征
	Time time.Time

	// Limit 是请求的返回条数
	Limit int

	// Labels 是请求级标签，用于解释与观测
	Labels map[string]utils.Label

	// Params 请求级附加参数（例如 request_id）
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
