package core

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Scorer 错误：INVALID_OUTPUT, UNAVAILABLE
//   - 请求错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInvalidOutput = "INVALID_OUTPUT" // 模型输出无效（长度不符、概率越界）
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleFeature   = "feature"   // 特征模块
	ModuleModel     = "model"     // 模型模块
	ModuleService   = "service"   // 服务模块
	ModuleRecommend = "recommend" // 推荐主流程
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "user not found")
	// ErrPostNotFound 帖子不存在
	ErrPostNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "post not found")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// FeatureMismatchError 表示特征矩阵的列与模型期望的列不一致（特征管线与模型产物发生漂移）。
// 属于配置错误：请求直接失败，启动期检查到时进程退出，不做任何重排或丢列。
type FeatureMismatchError struct {
	// Source 发现不一致的位置，例如 "schema/table"、"schema/model"、"matrix/model"
	Source string
	// Missing 期望存在但缺失的列
	Missing []string
	// Unexpected 多出来的列
	Unexpected []string
	// Misordered 列集合一致但顺序不同
	Misordered bool
}

func (e *FeatureMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("feature mismatch")
	if e.Source != "" {
		b.WriteString(" (")
		b.WriteString(e.Source)
		b.WriteString(")")
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %v", e.Missing)
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, ": unexpected %v", e.Unexpected)
	}
	if e.Misordered {
		b.WriteString(": column order differs")
	}
	return b.String()
}

// IsFeatureMismatch 检查错误链中是否包含 FeatureMismatchError
func IsFeatureMismatch(err error) bool {
	var fm *FeatureMismatchError
	return errors.As(err, &fm)
}

// StartupError 表示启动期的加载失败（特征表、schema、模型产物），进程不应开始服务。
type StartupError struct {
	Stage string // 失败阶段，例如 "feature_table"、"schema"、"model"
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// NewStartupError 包装启动期错误；err 为 nil 时返回 nil。
func NewStartupError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StartupError{Stage: stage, Err: err}
}

// IsStartupError 检查错误链中是否包含 StartupError
func IsStartupError(err error) bool {
	var se *StartupError
	return errors.As(err, &se)
}
