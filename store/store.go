// Package store 提供 core 中存储接口的实现：
//   - RedisStore 实现 core.KeyValueStore（特征快照）；MemoryStore 是同一接口的内存实现（测试 / 开发）
//   - MemoryRepository 实现 core.Repository（测试 / 开发）
//   - store/postgres 实现 core.Repository 与 Postgres 特征表加载
//   - store/duckdb 实现 Parquet 特征表加载
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	var repo core.Repository = store.NewMemoryRepository()
package store
