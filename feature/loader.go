package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrank/core"
)

// TableLoader 帖子特征表加载器接口。
// 启动时调用一次，一次性批量读取全部帖子的离线特征。
//
// 实现：
//   - postgres.FeatureLoader（Postgres 表）
//   - duckdb.ParquetLoader（Parquet 文件）
//   - StoreTableLoader（Redis Hash）
//   - FeastTableLoader（Feast 在线存储）
//   - StaticLoader（测试 / 开发）
type TableLoader interface {
	// Name 返回加载器名称（用于日志）
	Name() string
	// Load 加载整张特征表；任何错误都意味着没有可用的表（不返回部分结果）
	Load(ctx context.Context) (*Table, error)
}

// LoadTable 用 loader 加载特征表，失败时包装为 core.StartupError。
func LoadTable(ctx context.Context, loader TableLoader) (*Table, error) {
	if loader == nil {
		return nil, core.NewStartupError("feature_table", fmt.Errorf("no table loader configured"))
	}
	t, err := loader.Load(ctx)
	if err != nil {
		return nil, core.NewStartupError("feature_table", fmt.Errorf("%s: %w", loader.Name(), err))
	}
	if t == nil {
		return nil, core.NewStartupError("feature_table", fmt.Errorf("%s: returned no table", loader.Name()))
	}
	return t, nil
}

// StaticLoader 从内存中的行构造特征表
type StaticLoader struct {
	Rows []Row
}

// NewStaticLoader 创建静态加载器
func NewStaticLoader(rows ...Row) *StaticLoader {
	return &StaticLoader{Rows: rows}
}

func (l *StaticLoader) Name() string { return "static" }

func (l *StaticLoader) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewTable(l.Rows)
}

// BuildTable 把原始记录逐条转换为 Row 并构造表，供各类数据源复用。
func BuildTable(records []map[string]any, names ColumnNames) (*Table, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := NewRow(rec, names)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return NewTable(rows)
}
