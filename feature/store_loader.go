package feature

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedrank/core"
)

// KeyPrefix 定义特征快照在 KV 存储中的 key 布局
type KeyPrefix struct {
	IDs  string `koanf:"ids"`  // 帖子 ID 列表（JSON 数组），例如 "post:features:ids"
	Item string `koanf:"item"` // 单个帖子的 Hash 前缀，例如 "post:features:"
}

// StoreTableLoader 是基于 KeyValueStore 的特征表加载器，采用适配器模式。
// 每个帖子一条 Hash（字段即列），ID 列表决定行顺序。
type StoreTableLoader struct {
	store       core.KeyValueStore
	keyPrefix   KeyPrefix
	names       ColumnNames
	concurrency int
}

// NewStoreTableLoader 创建基于 Store 的特征表加载器
func NewStoreTableLoader(store core.KeyValueStore, keyPrefix KeyPrefix, names ColumnNames) *StoreTableLoader {
	if keyPrefix.IDs == "" {
		keyPrefix.IDs = "post:features:ids"
	}
	if keyPrefix.Item == "" {
		keyPrefix.Item = "post:features:"
	}
	return &StoreTableLoader{
		store:       store,
		keyPrefix:   keyPrefix,
		names:       names.WithDefaults(),
		concurrency: 16,
	}
}

// WithConcurrency 设置并发读取数
func (l *StoreTableLoader) WithConcurrency(n int) *StoreTableLoader {
	if n > 0 {
		l.concurrency = n
	}
	return l
}

func (l *StoreTableLoader) Name() string {
	return fmt.Sprintf("store.%s", l.store.Name())
}

func (l *StoreTableLoader) Load(ctx context.Context) (*Table, error) {
	data, err := l.store.Get(ctx, l.keyPrefix.IDs)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, fmt.Errorf("id list %q not found", l.keyPrefix.IDs)
		}
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode id list %q: %w", l.keyPrefix.IDs, err)
	}

	records := make([]map[string]any, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			key := l.keyPrefix.Item + strconv.FormatInt(id, 10)
			fields, err := l.store.HGetAll(gctx, key)
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			if len(fields) == 0 {
				return fmt.Errorf("read %s: hash is empty", key)
			}
			rec := make(map[string]any, len(fields)+1)
			for field, raw := range fields {
				rec[field] = l.parseField(field, raw)
			}
			rec[l.names.ID] = id
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildTable(records, l.names)
}

// parseField Hash 字段值能解析为数字的视为数值，否则视为分类标签；text 列保持原文。
func (l *StoreTableLoader) parseField(field string, raw []byte) any {
	s := string(raw)
	if field == l.names.Text {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
