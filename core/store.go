package core

import "context"

// KeyValueStore 是帖子特征快照所在的 KV 存储，由 store.RedisStore / store.MemoryStore 实现。
//
// 布局：一个普通 key 存放全部帖子 ID（JSON 数组），每个帖子的特征是一条 Hash，
// 字段名即列名。feature.StoreTableLoader 在启动时一次性读完。
type KeyValueStore interface {
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)
	// Set ttl 单位为秒，不传表示不过期
	Set(ctx context.Context, key string, value []byte, ttl ...int) error
	Delete(ctx context.Context, key string) error
	// BatchGet 只返回存在的 key
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte) error
	// HGetAll key 不存在时返回空 map
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	Close() error
}

// ErrStoreNotFound key 或 Hash 字段不存在
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 判断是否为存储层的 key 不存在（区别于用户 / 帖子不存在）
func IsStoreNotFound(err error) bool {
	de := GetDomainError(err)
	return de != nil && de.Module == ModuleStore && de.Code == ErrorCodeNotFound
}
