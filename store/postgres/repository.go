package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rushteam/feedrank/core"
)

// Repository 读取 "user" / post / feed_action 三张表
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, gender, age, country, city, exp_group, os, source
		FROM "user"
		WHERE id = $1`, id)

	var u core.User
	if err := row.Scan(&u.ID, &u.Gender, &u.Age, &u.Country, &u.City, &u.ExpGroup, &u.OS, &u.Source); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id int64) (*core.Post, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT id, text, topic FROM post WHERE id = $1`, id)

	var p core.Post
	if err := row.Scan(&p.ID, &p.Text, &p.Topic); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return &p, nil
}

func (r *Repository) ListPosts(ctx context.Context) ([]core.Post, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, text, topic FROM post ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []core.Post
	for rows.Next() {
		var p core.Post
		if err := rows.Scan(&p.ID, &p.Text, &p.Topic); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *Repository) FeedByUser(ctx context.Context, userID int64, limit int) ([]core.FeedAction, error) {
	return r.feed(ctx, `
		SELECT user_id, post_id, action, time
		FROM feed_action
		WHERE user_id = $1
		ORDER BY time DESC
		LIMIT $2`, userID, limit)
}

func (r *Repository) FeedByPost(ctx context.Context, postID int64, limit int) ([]core.FeedAction, error) {
	return r.feed(ctx, `
		SELECT user_id, post_id, action, time
		FROM feed_action
		WHERE post_id = $1
		ORDER BY time DESC
		LIMIT $2`, postID, limit)
}

func (r *Repository) feed(ctx context.Context, query string, id int64, limit int) ([]core.FeedAction, error) {
	out := make([]core.FeedAction, 0)
	if limit <= 0 {
		return out, nil
	}
	rows, err := r.db.Pool.Query(ctx, query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.FeedAction
		if err := rows.Scan(&a.UserID, &a.PostID, &a.Action, &a.Time); err != nil {
			return nil, fmt.Errorf("scan feed action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ core.Repository = (*Repository)(nil)
