package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feature"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("post", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("user", cel.MapType(cel.StringType, cel.DynType)),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的候选过滤表达式，使用 CEL (Common Expression Language)。
// 编译一次，可被并发请求复用。
//
// 可用变量：
//   - post.id / post.topic：候选帖子
//   - user.id / user.age / user.country / user.city / user.exp_group / user.gender / user.os / user.source
//
// 示例：
//   - `post.topic != "covid"`
//   - `post.topic in ["movie", "sport"] && user.age >= 18`
//   - `post.id % 2 == 0`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。返回值类型在求值时检查，必须为 bool。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string {
	return p.expr
}

// Evaluate 对一个候选帖子求值。
func (p *Program) Evaluate(row feature.Row, user *core.User) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"post": PostVars(row),
		"user": UserVars(user),
	})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", p.expr, out.Value())
	}
	return result, nil
}

// PostVars 构建 post 变量
func PostVars(row feature.Row) map[string]any {
	return map[string]any{
		"id":    row.PostID,
		"topic": row.Topic,
	}
}

// UserVars 构建 user 变量；user 为空时返回空 map
func UserVars(user *core.User) map[string]any {
	if user == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":        user.ID,
		"age":       int64(user.Age),
		"country":   user.Country,
		"city":      user.City,
		"exp_group": int64(user.ExpGroup),
		"gender":    int64(user.Gender),
		"os":        user.OS,
		"source":    user.Source,
	}
}
