package feature

import (
	"fmt"
	"sort"

	"github.com/rushteam/feedrank/pkg/conv"
)

// 特征表中的保留列名默认值
const (
	DefaultIDColumn    = "post_id"
	DefaultTopicColumn = "topic"
	DefaultTextColumn  = "text"
)

// ColumnNames 指定原始记录中 ID / 展示字段所在的列。
type ColumnNames struct {
	ID    string `koanf:"id" json:"id" yaml:"id"`
	Topic string `koanf:"topic" json:"topic" yaml:"topic"`
	Text  string `koanf:"text" json:"text" yaml:"text"`
}

// WithDefaults 为空字段填充默认列名
func (c ColumnNames) WithDefaults() ColumnNames {
	if c.ID == "" {
		c.ID = DefaultIDColumn
	}
	if c.Topic == "" {
		c.Topic = DefaultTopicColumn
	}
	if c.Text == "" {
		c.Text = DefaultTextColumn
	}
	return c
}

// Row 是特征表中的一行：一个帖子的离线特征与展示字段。
// Features 不包含 text；topic 同时作为展示字段与分类特征存在。
type Row struct {
	PostID   int64
	Topic    string
	Text     string
	Features map[string]Value
}

// NewRow 从一条原始记录构造 Row。
// ID、topic、text 三列必须存在且非空。ID 列与 text 列不进入特征；topic 列同时写入展示字段和分类特征；其余列全部作为特征。
func NewRow(record map[string]any, names ColumnNames) (Row, error) {
	names = names.WithDefaults()

	rawID, ok := record[names.ID]
	if !ok {
		return Row{}, fmt.Errorf("missing id column %q", names.ID)
	}
	id, err := conv.ToInt64(rawID)
	if err != nil {
		return Row{}, fmt.Errorf("id column %q: %w", names.ID, err)
	}

	for _, col := range []string{names.Topic, names.Text} {
		if _, ok := record[col]; !ok {
			return Row{}, fmt.Errorf("post %d: missing column %q", id, col)
		}
	}

	row := Row{
		PostID:   id,
		Features: make(map[string]Value, len(record)),
	}
	for col, raw := range record {
		switch col {
		case names.ID:
			continue
		case names.Text:
			if raw == nil {
				return Row{}, fmt.Errorf("post %d: text column %q: null value", row.PostID, col)
			}
			s, ok := raw.(string)
			if !ok {
				return Row{}, fmt.Errorf("post %d: text column %q: unsupported type %T", row.PostID, col, raw)
			}
			row.Text = s
			continue
		}
		v, err := ValueOf(raw)
		if err != nil {
			return Row{}, fmt.Errorf("post %d: column %q: %w", row.PostID, col, err)
		}
		if col == names.Topic {
			v = v.AsCategorical()
			row.Topic = v.Cat
		}
		row.Features[col] = v
	}
	return row, nil
}

// Table 是启动时加载的帖子特征表，按帖子 ID 建索引。
// 构造后只读：没有任何修改方法，可被并发请求安全共享。
type Table struct {
	rows    []Row
	index   map[int64]int
	columns []string
}

// NewTable 校验并构造特征表。
// 要求：帖子 ID 不重复；所有行的特征列集合一致（矩形表）。
// 行顺序即原始顺序，排序同分时按此顺序决胜。
func NewTable(rows []Row) (*Table, error) {
	t := &Table{
		rows:  make([]Row, 0, len(rows)),
		index: make(map[int64]int, len(rows)),
	}
	if len(rows) == 0 {
		return t, nil
	}

	t.columns = make([]string, 0, len(rows[0].Features))
	for col := range rows[0].Features {
		t.columns = append(t.columns, col)
	}
	sort.Strings(t.columns)

	for i, row := range rows {
		if _, dup := t.index[row.PostID]; dup {
			return nil, fmt.Errorf("duplicate post id %d at row %d", row.PostID, i)
		}
		if len(row.Features) != len(t.columns) {
			return nil, fmt.Errorf("row %d (post %d): has %d feature columns, want %d", i, row.PostID, len(row.Features), len(t.columns))
		}
		features := make(map[string]Value, len(row.Features))
		for _, col := range t.columns {
			v, ok := row.Features[col]
			if !ok {
				return nil, fmt.Errorf("row %d (post %d): missing feature column %q", i, row.PostID, col)
			}
			features[col] = v
		}
		row.Features = features
		t.index[row.PostID] = len(t.rows)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Len 返回候选帖子数量
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns 返回特征列名（按字典序）
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn 判断特征列是否存在
func (t *Table) HasColumn(name string) bool {
	i := sort.SearchStrings(t.columns, name)
	return i < len(t.columns) && t.columns[i] == name
}

// At 返回第 i 行。返回的 Features 与表共享，调用方不得修改。
func (t *Table) At(i int) Row {
	return t.rows[i]
}

// Lookup 按帖子 ID 查找行
func (t *Table) Lookup(postID int64) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	i, ok := t.index[postID]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Position 返回帖子在表中的行号
func (t *Table) Position(postID int64) (int, bool) {
	i, ok := t.index[postID]
	return i, ok
}
