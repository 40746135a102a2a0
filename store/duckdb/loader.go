// Package duckdb 通过 DuckDB 读取 Parquet 格式的帖子特征快照。
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/rushteam/feedrank/feature"
)

// ParquetLoader 用内存 DuckDB 读取 Parquet 文件（支持 glob），按 ID 列排序。
type ParquetLoader struct {
	path  string
	names feature.ColumnNames
}

func NewParquetLoader(path string, names feature.ColumnNames) *ParquetLoader {
	return &ParquetLoader{path: path, names: names.WithDefaults()}
}

func (l *ParquetLoader) Name() string { return "parquet:" + l.path }

func (l *ParquetLoader) Load(ctx context.Context) (*feature.Table, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close() //nolint:errcheck // in-memory database

	query := fmt.Sprintf("SELECT * FROM read_parquet(%s) ORDER BY %s",
		quoteLiteral(l.path), quoteIdent(l.names.ID))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", l.path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan parquet row: %w", err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			rec[col] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", l.path, err)
	}
	return feature.BuildTable(records, l.names)
}

// normalize 把 DuckDB 特有的数值类型转换为 float64
func normalize(v any) any {
	switch val := v.(type) {
	case duckdb.Decimal:
		return val.Float64()
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return f
	default:
		return v
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
