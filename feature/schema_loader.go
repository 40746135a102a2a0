package feature

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// SchemaLoader schema 加载器接口
// 支持从不同来源加载 schema（本地文件、HTTP 接口等）
type SchemaLoader interface {
	// Load 加载 schema，source 是数据源标识（文件路径、URL）
	Load(ctx context.Context, source string) (*Schema, error)
}

// NewSchemaLoader 按 source 前缀选择加载器：http(s):// 走 HTTP，其余视为本地文件。
func NewSchemaLoader(source string, timeout time.Duration) SchemaLoader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPSchemaLoader(timeout)
	}
	return NewFileSchemaLoader()
}

// FileSchemaLoader 本地文件 schema 加载器
type FileSchemaLoader struct{}

// NewFileSchemaLoader 创建本地文件 schema 加载器
func NewFileSchemaLoader() *FileSchemaLoader {
	return &FileSchemaLoader{}
}

// Load 从本地文件加载 schema
func (l *FileSchemaLoader) Load(ctx context.Context, filePath string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadSchemaFile(filePath)
}

// HTTPSchemaLoader HTTP 接口 schema 加载器
type HTTPSchemaLoader struct {
	client *http.Client
}

// NewHTTPSchemaLoader 创建 HTTP 接口 schema 加载器
//
// 用法：
//
//	loader := feature.NewHTTPSchemaLoader(5 * time.Second)
//	schema, err := loader.Load(ctx, "http://models.internal/v3/feature_schema.json")
func NewHTTPSchemaLoader(timeout time.Duration) *HTTPSchemaLoader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSchemaLoader{client: &http.Client{Timeout: timeout}}
}

// NewHTTPSchemaLoaderWithClient 使用自定义 HTTP 客户端创建加载器
func NewHTTPSchemaLoaderWithClient(client *http.Client) *HTTPSchemaLoader {
	return &HTTPSchemaLoader{client: client}
}

// Load 从 HTTP 接口加载 schema。
// 格式优先按 Content-Type 判断，其次按 URL 扩展名，默认 JSON。
func (l *HTTPSchemaLoader) Load(ctx context.Context, url string) (*Schema, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HTTP 请求失败: status=%d, body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return ParseSchema(data, schemaFormat(resp.Header.Get("Content-Type"), url))
}

func schemaFormat(contentType, url string) string {
	if strings.Contains(contentType, "yaml") {
		return "yaml"
	}
	switch ext := strings.TrimPrefix(path.Ext(strings.SplitN(url, "?", 2)[0]), "."); ext {
	case "yaml", "yml":
		return "yaml"
	}
	return "json"
}
