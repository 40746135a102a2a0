// Package metrics 定义 Prometheus 指标：HTTP 接口、推荐链路各阶段、模型打分与启动加载。
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/feedrank/pipeline"
)

var (
	// HTTP 接口
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedrank_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
	)

	// 推荐链路
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_pipeline_node_duration_seconds",
			Help:    "Duration of a pipeline node in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_pipeline_node_errors_total",
			Help: "Total number of pipeline node failures",
		},
		[]string{"node", "kind"},
	)

	NodeItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_pipeline_node_items",
			Help:    "Number of items emitted by a pipeline node",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"node", "kind"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// 启动加载
	FeatureTableRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_feature_table_rows",
			Help: "Number of posts in the loaded feature table",
		},
	)

	StartupLoadDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feedrank_startup_load_duration_seconds",
			Help: "Time spent loading a startup resource",
		},
		[]string{"stage"},
	)

	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feedrank_model_info",
			Help: "Loaded scorer and schema version (value is always 1)",
		},
		[]string{"scorer", "schema_version"},
	)
)

// RecordAPIRequest 记录一次 HTTP 请求
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest 增减在途请求数
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation 按结果记录推荐请求：ok / not_found / error
func RecordRecommendation(outcome string) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}

// RecordStartupLoad 记录启动阶段耗时
func RecordStartupLoad(stage string, duration time.Duration) {
	StartupLoadDuration.WithLabelValues(stage).Set(duration.Seconds())
}

// PipelineObserver 实现 pipeline.Observer，把每个 Node 的耗时与输出数量写入指标。
type PipelineObserver struct{}

func (PipelineObserver) ObserveNode(_ context.Context, node pipeline.Node, _, out int, elapsed time.Duration, err error) {
	kind := string(node.Kind())
	NodeDuration.WithLabelValues(node.Name(), kind).Observe(elapsed.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node.Name(), kind).Inc()
		return
	}
	NodeItems.WithLabelValues(node.Name(), kind).Observe(float64(out))
}

var _ pipeline.Observer = PipelineObserver{}
