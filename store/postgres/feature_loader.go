package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rushteam/feedrank/feature"
)

// DefaultFeatureTable 帖子特征表默认表名
const DefaultFeatureTable = "post_features"

// FeatureLoader 从 Postgres 表一次性读取帖子特征。
// 列是动态的：除 ID / text 外的每一列都成为特征列。
type FeatureLoader struct {
	db    *DB
	table string
	names feature.ColumnNames
}

func NewFeatureLoader(db *DB, table string, names feature.ColumnNames) *FeatureLoader {
	if table == "" {
		table = DefaultFeatureTable
	}
	return &FeatureLoader{db: db, table: table, names: names.WithDefaults()}
}

func (l *FeatureLoader) Name() string { return "postgres:" + l.table }

func (l *FeatureLoader) Load(ctx context.Context) (*feature.Table, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s",
		pgx.Identifier{l.table}.Sanitize(), pgx.Identifier{l.names.ID}.Sanitize())

	rows, err := l.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", l.table, err)
		}
		rec := make(map[string]any, len(fields))
		for i, fd := range fields {
			v, err := normalize(values[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", fd.Name, err)
			}
			rec[fd.Name] = v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", l.table, err)
	}
	return feature.BuildTable(records, l.names)
}

// normalize 把 pgx 解码出的值转换为 feature.ValueOf 支持的类型
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return nil, nil
		}
		f, err := val.Float64Value()
		if err != nil {
			return nil, err
		}
		return f.Float64, nil
	default:
		return v, nil
	}
}
