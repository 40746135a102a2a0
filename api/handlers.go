package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/feedrank/core"
	"github.com/rushteam/feedrank/metrics"
)

// Recommender 是推荐服务在 HTTP 层的最小依赖
type Recommender interface {
	GetRecommendations(ctx context.Context, userID int64, at time.Time, limit int) ([]core.Post, error)
}

// ReadyCheck 就绪检查（数据库连通性、模型服务等）
type ReadyCheck func(ctx context.Context) error

// DefaultLimit 未传 limit 时的默认条数
const DefaultLimit = 10

// MaxLimit 单次请求允许的最大 limit
const MaxLimit = 1000

// Handler 持有 HTTP 层依赖
type Handler struct {
	repo        core.Repository
	recommender Recommender
	readyChecks map[string]ReadyCheck
	now         func() time.Time
}

// NewHandler 创建 Handler；readyChecks 可以为空
func NewHandler(repo core.Repository, recommender Recommender, readyChecks map[string]ReadyCheck) *Handler {
	return &Handler{
		repo:        repo,
		recommender: recommender,
		readyChecks: readyChecks,
		now:         time.Now,
	}
}

type feedQuery struct {
	Limit int `query:"limit" validate:"min=0,max=1000"`
}

type recommendQuery struct {
	ID    int64     `query:"id"`
	Time  time.Time `query:"time"`
	Limit int       `query:"limit" validate:"min=0,max=1000"`
}

// GetUser GET /user/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.repo.GetUserByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err, fmt.Sprintf("No user with id %d", id))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetPost GET /post/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := h.repo.GetPostByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err, fmt.Sprintf("No post with id %d", id))
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// GetUserFeed GET /user/{id}/feed?limit=10
func (h *Handler) GetUserFeed(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, h.repo.FeedByUser)
}

// GetPostFeed GET /post/{id}/feed?limit=10
func (h *Handler) GetPostFeed(w http.ResponseWriter, r *http.Request) {
	h.feed(w, r, h.repo.FeedByPost)
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request, load func(context.Context, int64, int) ([]core.FeedAction, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q := feedQuery{Limit: DefaultLimit}
	if !parseLimit(w, r, &q.Limit) {
		return
	}
	if err := validateRequest(&q); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	actions, err := load(r.Context(), id, q.Limit)
	if err != nil {
		respondDomainError(w, r, err, "not found")
		return
	}
	respondJSON(w, http.StatusOK, actions)
}

// GetRecommendations GET /post/recommendations/?id=&time=&limit=10
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := recommendQuery{Limit: DefaultLimit}

	rawID := query.Get("id")
	if rawID == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "id is required", nil)
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "id must be an integer", nil)
		return
	}
	q.ID = id

	if raw := query.Get("time"); raw != "" {
		at, err := parseTime(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
			return
		}
		q.Time = at
	} else {
		q.Time = h.now()
	}
	if !parseLimit(w, r, &q.Limit) {
		return
	}
	if err := validateRequest(&q); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	posts, err := h.recommender.GetRecommendations(r.Context(), q.ID, q.Time, q.Limit)
	if err != nil {
		if core.IsNotFound(err) {
			metrics.RecordRecommendation("not_found")
		} else {
			metrics.RecordRecommendation("error")
		}
		respondDomainError(w, r, err, fmt.Sprintf("No user with id %d", q.ID))
		return
	}
	metrics.RecordRecommendation("ok")
	respondJSON(w, http.StatusOK, posts)
}

// Live GET /healthz/live
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready GET /healthz/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.readyChecks))
	for name, check := range h.readyChecks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}
	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	respondJSON(w, status, body)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "id must be an integer", nil)
		return 0, false
	}
	return id, true
}

func parseLimit(w http.ResponseWriter, r *http.Request, limit *int) bool {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer", nil)
		return false
	}
	*limit = n
	return true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime 支持 RFC3339 与不带时区的 ISO 格式（按 UTC 解析）
func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("time %q is not a valid timestamp", raw)
}
