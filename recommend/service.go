// Package recommend 组装推荐主流程：查询用户 -> 候选召回 -> 过滤 -> 特征组装与打分 -> Top-K -> 结果格式化。
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
	"github.com/rushteam/feedrank/filter"
	"github.com/rushteam/feedrank/logging"
	"github.com/rushteam/feedrank/model"
	"github.com/rushteam/feedrank/pipeline"
	"github.com/rushteam/feedrank/rank"
	"github.com/rushteam/feedrank/recall"
	"github.com/rushteam/feedrank/rerank"
)

// DefaultRequestTimeout 单次推荐请求的默认超时
const DefaultRequestTimeout = 5 * time.Second

// Service 是推荐服务。特征表、Schema、打分器在启动时构造后注入，之后只读，可被并发请求共享。
type Service struct {
	users     core.UserRepository
	assembler *feature.Assembler
	scorer    model.Scorer

	timeout    time.Duration
	filterExpr string
	observer   pipeline.Observer

	nodes []pipeline.Node
}

// Option 配置 Service
type Option func(*Service)

// WithRequestTimeout 设置单次请求超时；<= 0 时不设置超时
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithFilterExpr 设置候选过滤表达式（CEL），空串表示不过滤
func WithFilterExpr(expr string) Option {
	return func(s *Service) {
		s.filterExpr = expr
	}
}

// WithObserver 设置 pipeline 观测器
func WithObserver(o pipeline.Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// New 构造推荐服务并做启动期一致性检查：
// Schema 列必须与打分器输入列完全一致，特征表必须包含全部非广播列。
func New(users core.UserRepository, assembler *feature.Assembler, scorer model.Scorer, opts ...Option) (*Service, error) {
	s := &Service{
		users:     users,
		assembler: assembler,
		scorer:    scorer,
		timeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	schema := assembler.Schema()
	if err := schema.CheckColumns("schema/model", scorer.FeatureColumns()); err != nil {
		return nil, core.NewStartupError("model", err)
	}
	if err := schema.CheckTable(assembler.Table()); err != nil {
		return nil, core.NewStartupError("feature_table", err)
	}

	s.nodes = []pipeline.Node{&recall.TableRecall{Table: assembler.Table()}}
	f, err := filter.NewExprFilter(s.filterExpr, assembler.Table())
	if err != nil {
		return nil, core.NewStartupError("filter", err)
	}
	if f != nil {
		s.nodes = append(s.nodes, &filter.FilterNode{Filters: []filter.Filter{f}})
	}
	s.nodes = append(s.nodes, &rank.ModelNode{Assembler: assembler, Scorer: scorer})
	return s, nil
}

// Table 返回候选特征表
func (s *Service) Table() *feature.Table {
	return s.assembler.Table()
}

// Scorer 返回打分器
func (s *Service) Scorer() model.Scorer {
	return s.scorer
}

// GetRecommendations 为用户返回最多 limit 个帖子，按预测概率降序，同分按特征表顺序。
// 用户不存在返回 core.ErrUserNotFound；limit <= 0 返回空结果（用户仍会被查询）。
func (s *Service) GetRecommendations(ctx context.Context, userID int64, at time.Time, limit int) ([]core.Post, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if limit <= 0 {
		return []core.Post{}, nil
	}

	rctx := &core.RecommendContext{
		UserID: userID,
		User:   user,
		Time:   at,
		Limit:  limit,
		Params: map[string]any{"request_id": logging.RequestIDFromContext(ctx)},
	}
	p := &pipeline.Pipeline{
		Nodes:    append(s.nodes[:len(s.nodes):len(s.nodes)], &rerank.TopNNode{N: limit}),
		Observer: s.observer,
	}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	posts, err := Format(s.assembler.Table(), items)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("limit", limit).
		Int("candidates", s.assembler.Table().Len()).
		Int("returned", len(posts)).
		Msg("recommendations ranked")
	return posts, nil
}
