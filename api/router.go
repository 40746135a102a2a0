// Package api 提供 HTTP 接口：用户 / 帖子 / 交互记录查询与帖子推荐。
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig 路由层配置
type RouterConfig struct {
	// RequestTimeout 单请求超时，<= 0 不设置
	RequestTimeout time.Duration
	// RateLimitRequests 每个 IP 在 RateLimitWindow 内允许的请求数，<= 0 不限流
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// EnableMetrics 是否暴露 /metrics
	EnableMetrics bool
}

// NewRouter 组装路由与中间件
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog())
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz/live", h.Live)
	r.Get("/healthz/ready", h.Ready)
	if cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(RateLimit(cfg.RateLimitRequests, window))
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Get("/user/{id}", h.GetUser)
		r.Get("/user/{id}/feed", h.GetUserFeed)
		r.Get("/post/recommendations", h.GetRecommendations)
		r.Get("/post/recommendations/", h.GetRecommendations)
		r.Get("/post/{id}", h.GetPost)
		r.Get("/post/{id}/feed", h.GetPostFeed)
	})
	return r
}
