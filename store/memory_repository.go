package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/feedrank/core"
)

// MemoryRepository 是内存实现的 core.Repository，用于测试/开发。
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]core.User
	posts map[int64]core.Post
	feed  []core.FeedAction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[int64]core.User),
		posts: make(map[int64]core.Post),
	}
}

// PutUser 写入用户
func (r *MemoryRepository) PutUser(users ...core.User) *MemoryRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// PutPost 写入帖子
func (r *MemoryRepository) PutPost(posts ...core.Post) *MemoryRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

// AddFeed 追加交互记录
func (r *MemoryRepository) AddFeed(actions ...core.FeedAction) *MemoryRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feed = append(r.feed, actions...)
	return r
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetPostByID(ctx context.Context, id int64) (*core.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, core.ErrPostNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) ListPosts(ctx context.Context) ([]core.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) FeedByUser(ctx context.Context, userID int64, limit int) ([]core.FeedAction, error) {
	return r.latest(limit, func(a core.FeedAction) bool { return a.UserID == userID }), nil
}

func (r *MemoryRepository) FeedByPost(ctx context.Context, postID int64, limit int) ([]core.FeedAction, error) {
	return r.latest(limit, func(a core.FeedAction) bool { return a.PostID == postID }), nil
}

func (r *MemoryRepository) latest(limit int, match func(core.FeedAction) bool) []core.FeedAction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.FeedAction, 0)
	if limit <= 0 {
		return out
	}
	for _, a := range r.feed {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ core.Repository = (*MemoryRepository)(nil)
