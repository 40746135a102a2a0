package feature

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/feast"
)

// FeastTableLoader 从 Feast 在线存储读取帖子特征。
// 帖子集合（id / topic / text）来自 PostRepository，特征按批次从 Feast 读取；
// 特征引用 "view:feature" 映射为列名 "feature"。
type FeastTableLoader struct {
	client    feast.Client
	posts     core.PostRepository
	features  []string
	entityKey string
	batchSize int
	names     ColumnNames
}

// NewFeastTableLoader 创建 Feast 特征表加载器
func NewFeastTableLoader(client feast.Client, posts core.PostRepository, features []string, entityKey string) *FeastTableLoader {
	if entityKey == "" {
		entityKey = DefaultIDColumn
	}
	return &FeastTableLoader{
		client:    client,
		posts:     posts,
		features:  features,
		entityKey: entityKey,
		batchSize: 500,
		names:     ColumnNames{}.WithDefaults(),
	}
}

// WithBatchSize 设置每批请求的实体数
func (l *FeastTableLoader) WithBatchSize(n int) *FeastTableLoader {
	if n > 0 {
		l.batchSize = n
	}
	return l
}

func (l *FeastTableLoader) Name() string { return "feast" }

func (l *FeastTableLoader) Load(ctx context.Context) (*Table, error) {
	columns, err := l.columns()
	if err != nil {
		return nil, err
	}
	posts, err := l.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	records := make([]map[string]any, 0, len(posts))
	for start := 0; start < len(posts); start += l.batchSize {
		batch := posts[start:min(start+l.batchSize, len(posts))]
		entityRows := make([]map[string]any, len(batch))
		for i, p := range batch {
			entityRows[i] = map[string]any{l.entityKey: p.ID}
		}
		resp, err := l.client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
			Features:   l.features,
			EntityRows: entityRows,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.FeatureVectors) != len(batch) {
			return nil, fmt.Errorf("feast returned %d rows for %d posts", len(resp.FeatureVectors), len(batch))
		}
		for i, p := range batch {
			rec := map[string]any{
				l.names.ID:    p.ID,
				l.names.Topic: p.Topic,
				l.names.Text:  p.Text,
			}
			for j, ref := range l.features {
				v, ok := resp.FeatureVectors[i].Values[ref]
				if !ok {
					return nil, fmt.Errorf("post %d: feature %q is null", p.ID, ref)
				}
				rec[columns[j]] = v
			}
			records = append(records, rec)
		}
	}
	return BuildTable(records, l.names)
}

// columns 返回各特征引用对应的列名。
// 不同 view 的同名特征、以及与 ID / topic / text 同名的特征都会互相覆盖，直接报错。
func (l *FeastTableLoader) columns() ([]string, error) {
	if len(l.features) == 0 {
		return nil, fmt.Errorf("no feast features configured")
	}
	seen := map[string]string{
		l.names.ID:    "post id",
		l.names.Topic: "post topic",
		l.names.Text:  "post text",
	}
	out := make([]string, len(l.features))
	for i, ref := range l.features {
		col := featureColumn(ref)
		if prev, dup := seen[col]; dup {
			return nil, fmt.Errorf("feature %q maps to column %q already used by %s", ref, col, prev)
		}
		seen[col] = fmt.Sprintf("feature %q", ref)
		out[i] = col
	}
	return out, nil
}

// featureColumn 取特征引用中 ':' 之后的部分作为列名
func featureColumn(ref string) string {
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
