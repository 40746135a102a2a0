package core

import "context"

// UserRepository 是用户数据的领域接口。
//
// 实现：
//   - store/postgres.Repository（生产）
//   - store.MemoryRepository（测试/开发）
type UserRepository interface {
	// GetUserByID 按主键读取用户；不存在时返回 ErrUserNotFound
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// PostRepository 是帖子数据的领域接口。
type PostRepository interface {
	// GetPostByID 按主键读取帖子；不存在时返回 ErrPostNotFound
	GetPostByID(ctx context.Context, id int64) (*Post, error)

	// ListPosts 按 ID 升序返回全部帖子
	ListPosts(ctx context.Context) ([]Post, error)
}

// FeedRepository 是交互记录的领域接口。
type FeedRepository interface {
	// FeedByUser 返回用户最新的 limit 条交互（时间倒序）
	FeedByUser(ctx context.Context, userID int64, limit int) ([]FeedAction, error)

	// FeedByPost 返回帖子最新的 limit 条交互（时间倒序）
	FeedByPost(ctx context.Context, postID int64, limit int) ([]FeedAction, error)
}

// Repository 聚合三类数据访问，HTTP 层通过它读取记录。
type Repository interface {
	UserRepository
	PostRepository
	FeedRepository
}
