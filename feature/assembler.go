package feature

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedrank/core"
)

// 由组装器广播到每一行的列：用户属性 + 请求时间
const (
	ColumnAge      = "age"
	ColumnCountry  = "country"
	ColumnCity     = "city"
	ColumnExpGroup = "exp_group"
	ColumnGender   = "gender"
	ColumnOS       = "os"
	ColumnSource   = "source"
	ColumnMonth    = "month"
	ColumnYear     = "year"
	ColumnHour     = "hour"
)

var broadcastColumns = []string{
	ColumnAge, ColumnCountry, ColumnCity, ColumnExpGroup, ColumnGender, ColumnOS, ColumnSource,
	ColumnMonth, ColumnYear, ColumnHour,
}

func isBroadcast(col string) bool {
	for _, c := range broadcastColumns {
		if c == col {
			return true
		}
	}
	return false
}

// BroadcastColumns 返回组装器负责填充的列（不需要特征表提供）
func BroadcastColumns() []string {
	out := make([]string, len(broadcastColumns))
	copy(out, broadcastColumns)
	return out
}

const defaultChunkSize = 256

// Assembler 把 用户属性 + 请求时间 + 帖子特征表 组装成模型输入矩阵。
// 持有只读的 schema 与 table，可被并发请求共享。
type Assembler struct {
	schema    *Schema
	table     *Table
	workers   int
	chunkSize int
}

// AssemblerOption 组装器选项
type AssemblerOption func(*Assembler)

// WithWorkers 设置组装并发度
func WithWorkers(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithChunkSize 设置每个任务处理的行数
func WithChunkSize(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// NewAssembler 创建组装器，并检查特征表是否满足 schema（启动期失败优先于请求期失败）。
func NewAssembler(schema *Schema, table *Table, opts ...AssemblerOption) (*Assembler, error) {
	if schema == nil {
		return nil, fmt.Errorf("assembler: schema is nil")
	}
	if table == nil {
		return nil, fmt.Errorf("assembler: table is nil")
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if err := schema.CheckTable(table); err != nil {
		return nil, err
	}
	a := &Assembler{
		schema:    schema,
		table:     table,
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Schema 返回组装器使用的 schema
func (a *Assembler) Schema() *Schema { return a.schema }

// Table 返回组装器使用的特征表
func (a *Assembler) Table() *Table { return a.table }

// broadcastValues 计算本次请求需要广播的列值
func broadcastValues(user *core.User, at time.Time) map[string]Value {
	return map[string]Value{
		ColumnAge:      Numeric(float64(user.Age)),
		ColumnCountry:  Categorical(user.Country),
		ColumnCity:     Categorical(user.City),
		ColumnExpGroup: Numeric(float64(user.ExpGroup)),
		ColumnGender:   Numeric(float64(user.Gender)),
		ColumnOS:       Categorical(user.OS),
		ColumnSource:   Categorical(user.Source),
		ColumnMonth:    Numeric(float64(at.Month())),
		ColumnYear:     Numeric(float64(at.Year())),
		ColumnHour:     Numeric(float64(at.Hour())),
	}
}

// columnPlan 描述矩阵中一列的取值方式
type columnPlan struct {
	name     string
	fixed    bool  // 广播列
	value    Value // 广播列的值（已做类型转换）
	category bool  // 表列是否需要转为分类
}

// Assemble 为 rows（特征表行号，按给定顺序）构造模型输入矩阵。
// 时间特征取自 at 自身所在时区。rows 为空时返回空矩阵。
func (a *Assembler) Assemble(ctx context.Context, user *core.User, at time.Time, rows []int) (*Matrix, error) {
	if user == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "assembler: user is nil")
	}

	cols := a.schema.FeatureColumns
	m := &Matrix{
		Columns: append([]string(nil), cols...),
		PostIDs: make([]int64, len(rows)),
		Rows:    make([][]Value, len(rows)),
	}
	if len(rows) == 0 {
		return m, nil
	}
	for _, r := range rows {
		if r < 0 || r >= a.table.Len() {
			return nil, fmt.Errorf("assembler: row %d out of range [0,%d)", r, a.table.Len())
		}
	}

	bv := broadcastValues(user, at)
	plan := make([]columnPlan, len(cols))
	for j, col := range cols {
		p := columnPlan{name: col, category: a.schema.IsCategorical(col)}
		if v, ok := bv[col]; ok {
			p.fixed = true
			if p.category {
				v = v.AsCategorical()
			}
			p.value = v
		}
		plan[j] = p
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for start := 0; start < len(rows); start += a.chunkSize {
		end := min(start+a.chunkSize, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				row := a.table.At(rows[i])
				values := make([]Value, len(plan))
				for j, p := range plan {
					if p.fixed {
						values[j] = p.value
						continue
					}
					v, ok := row.Features[p.name]
					if !ok {
						return &core.FeatureMismatchError{Source: "table/matrix", Missing: []string{p.name}}
					}
					if p.category {
						v = v.AsCategorical()
					}
					values[j] = v
				}
				m.PostIDs[i] = row.PostID
				m.Rows[i] = values
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// AssembleAll 对整张特征表（原始顺序）组装矩阵
func (a *Assembler) AssembleAll(ctx context.Context, user *core.User, at time.Time) (*Matrix, error) {
	rows := make([]int, a.table.Len())
	for i := range rows {
		rows[i] = i
	}
	return a.Assemble(ctx, user, at, rows)
}
