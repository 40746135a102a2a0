package core

import "time"

// User 是用户的静态属性（参考数据），由外部数据存储维护，按 ID 只读查询。
//
// 推荐时这些属性作为常量列广播到每个候选帖子上：
//
//	字段       特征列
//	Age        age
//	Country    country
//	City       city
//	ExpGroup   exp_group（分类）
//	Gender     gender（分类）
//	OS         os
//	Source     source
type User struct {
	ID       int64  `json:"id"`
	Gender   int    `json:"gender"`
	Age      int    `json:"age"`
	Country  string `json:"country"`
	City     string `json:"city"`
	ExpGroup int    `json:"exp_group"`
	OS       string `json:"os"`
	Source   string `json:"source"`
}

// Post 是帖子记录，Topic 与 Text 也是推荐结果的展示字段。
type Post struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

// FeedAction 是用户对帖子的一次交互（view / like 等）。
type FeedAction struct {
	UserID int64     `json:"user_id"`
	PostID int64     `json:"post_id"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
}
