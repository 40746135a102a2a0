package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedrank/core"
)

// Schema 是训练期产出的特征 schema（feature_schema.json / .yaml）。
// 它是特征表、组装器与模型三方之间的契约：列名、列顺序、哪些列是分类特征。
type Schema struct {
	// Version schema 版本
	Version string `json:"version" yaml:"version"`
	// FeatureColumns 模型输入列（按顺序）
	FeatureColumns []string `json:"feature_columns" yaml:"feature_columns"`
	// CategoricalColumns 分类列；exp_group / gender 无论是否列出都按分类处理
	CategoricalColumns []string `json:"categorical_columns" yaml:"categorical_columns"`
	// Categories 分类列的词表（标签编码用），可选
	Categories map[string][]string `json:"categories,omitempty" yaml:"categories,omitempty"`
	// ModelVersion 与之配套的模型版本
	ModelVersion string `json:"model_version,omitempty" yaml:"model_version,omitempty"`
	// CreatedAt 创建时间
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// ParseSchema 解析 schema 内容，format 为 "json" 或 "yaml"。
func ParseSchema(data []byte, format string) (*Schema, error) {
	var s Schema
	switch strings.ToLower(format) {
	case "json", "":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("解析 schema 失败: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("解析 schema 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema format %q", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchemaFile 从本地文件加载 schema，格式按扩展名判断。
func LoadSchemaFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 schema 文件失败: %w", err)
	}
	return ParseSchema(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Validate 校验 schema 自身的一致性
func (s *Schema) Validate() error {
	if len(s.FeatureColumns) == 0 {
		return fmt.Errorf("schema: feature_columns is empty")
	}
	seen := make(map[string]struct{}, len(s.FeatureColumns))
	for _, col := range s.FeatureColumns {
		if col == "" {
			return fmt.Errorf("schema: empty column name")
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("schema: duplicate column %q", col)
		}
		seen[col] = struct{}{}
	}
	for _, col := range s.CategoricalColumns {
		if _, ok := seen[col]; !ok {
			return fmt.Errorf("schema: categorical column %q is not a feature column", col)
		}
	}
	for col := range s.Categories {
		if !s.IsCategorical(col) {
			return fmt.Errorf("schema: categories given for non-categorical column %q", col)
		}
	}
	return nil
}

// IsCategorical 判断列是否按分类特征处理
func (s *Schema) IsCategorical(col string) bool {
	if col == ColumnExpGroup || col == ColumnGender {
		return true
	}
	for _, c := range s.CategoricalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// CheckTable 检查特征表是否提供了 schema 中所有非广播列。空表不做检查。
func (s *Schema) CheckTable(t *Table) error {
	if t.Len() == 0 {
		return nil
	}
	var missing []string
	for _, col := range s.FeatureColumns {
		if isBroadcast(col) {
			continue
		}
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &core.FeatureMismatchError{Source: "schema/table", Missing: missing}
	}
	return nil
}

// CheckColumns 检查 cols 与 schema 列完全一致（名称与顺序）。
func (s *Schema) CheckColumns(source string, cols []string) error {
	return CompareColumns(source, s.FeatureColumns, cols)
}

// CompareColumns 比较期望列与实际列，不一致时返回 *core.FeatureMismatchError。
func CompareColumns(source string, want, got []string) error {
	wantSet := make(map[string]struct{}, len(want))
	for _, c := range want {
		wantSet[c] = struct{}{}
	}
	gotSet := make(map[string]struct{}, len(got))
	for _, c := range got {
		gotSet[c] = struct{}{}
	}

	mismatch := &core.FeatureMismatchError{Source: source}
	for _, c := range want {
		if _, ok := gotSet[c]; !ok {
			mismatch.Missing = append(mismatch.Missing, c)
		}
	}
	for _, c := range got {
		if _, ok := wantSet[c]; !ok {
			mismatch.Unexpected = append(mismatch.Unexpected, c)
		}
	}
	if len(mismatch.Missing) > 0 || len(mismatch.Unexpected) > 0 {
		return mismatch
	}
	if len(want) != len(got) {
		// 集合一致但长度不同，说明有重复列
		mismatch.Misordered = true
		return mismatch
	}
	for i := range want {
		if want[i] != got[i] {
			mismatch.Misordered = true
			return mismatch
		}
	}
	return nil
}
