package feature

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/feedrank/pkg/conv"
)

// Kind 是特征值的类型标签。
type Kind uint8

const (
	KindNumeric     Kind = iota // 数值特征（有序）
	KindCategorical             // 分类特征（无序标签）
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Value 是特征值的 tagged variant：数值或分类标签。
// 模型按训练时的类型消费特征，分类列不能当作有序数值。
type Value struct {
	Kind Kind
	Num  float64
	Cat  string
}

// Numeric 构造数值特征值
func Numeric(v float64) Value {
	return Value{Kind: KindNumeric, Num: v}
}

// Categorical 构造分类特征值
func Categorical(s string) Value {
	return Value{Kind: KindCategorical, Cat: s}
}

// IsCategorical 是否为分类值
func (v Value) IsCategorical() bool {
	return v.Kind == KindCategorical
}

// AsCategorical 把值转换为分类标签；数值按最短十进制表示转换（2 -> "2"）。
func (v Value) AsCategorical() Value {
	if v.Kind == KindCategorical {
		return v
	}
	return Categorical(strconv.FormatFloat(v.Num, 'f', -1, 64))
}

// String 返回值的文本表示（分类标签原样返回）
func (v Value) String() string {
	if v.Kind == KindCategorical {
		return v.Cat
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// MarshalJSON 数值编码为 JSON number，分类编码为 JSON string。
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindCategorical {
		return json.Marshal(v.Cat)
	}
	return json.Marshal(v.Num)
}

// ValueOf 把数据源读出的原始值转换为特征值。
// 数值类型（含 bool）转为 Numeric，string / []byte 转为 Categorical；nil 视为缺失值报错。
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, fmt.Errorf("null value")
	case Value:
		return v, nil
	case string:
		return Categorical(v), nil
	case []byte:
		return Categorical(string(v)), nil
	}
	if f, ok := conv.ToFloat64(raw); ok {
		return Numeric(f), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}
