package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/pkg/dsl"
)

// ExprFilter 用 CEL 表达式筛选候选帖子：表达式为 true 的保留，false 的过滤。
// 表达式可以访问 post.id / post.topic 以及 user.* 属性，见 pkg/dsl。
type ExprFilter struct {
	Program *dsl.Program
	Table   *feature.Table
}

// NewExprFilter 编译表达式；空表达式返回 nil，调用方据此跳过过滤。
func NewExprFilter(expr string, table *feature.Table) (*ExprFilter, error) {
	if expr == "" {
		return nil, nil
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: prg, Table: table}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	row, ok := f.Table.Lookup(item.ID)
	if !ok {
		return false, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInternalError,
			fmt.Sprintf("post %d is not in the feature table", item.ID))
	}
	keep, err := f.Program.Evaluate(row, rctx.User)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
