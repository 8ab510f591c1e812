// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - Counter（计数器）：只增不减，如发放成功总数、售罄拒绝总数
//   - Gauge（仪表盘）：可增可减的瞬时值，如处理中的请求数
//   - Histogram（直方图）：观测值分布，如Lua脚本执行耗时的P99
//
// 使用方式：
//
//	metrics.InitMetrics()
//	http.Handle("/metrics", promhttp.Handler())
//
// 命名规范：
//   - Counter以_total结尾（stock_issues_total）
//   - Histogram以单位结尾（stock_engine_duration_seconds）
//
// 标签注意事项：不要使用sku作为标签（SKU数量无上限，会导致高基数时序爆炸），
// 只用platform、channel、result这类取值有限的维度。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（路由模板）、status（200/404/...）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 库存发放业务指标

	// IssuesTotal 发放成功总数（Counter）
	// 标签：platform、channel（claim/purchase）
	IssuesTotal *prometheus.CounterVec

	// IssuesRejectedTotal 发放被拒绝总数（Counter）
	// 标签：platform、reason（out_of_stock/not_found）
	IssuesRejectedTotal *prometheus.CounterVec

	// EngineDuration 分配引擎脚本执行耗时（Histogram）
	// 标签：script（available/issue/update）
	EngineDuration *prometheus.HistogramVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 发放业务指标
	IssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_issues_total",
			Help: "库存发放成功总数",
		},
		[]string{"platform", "channel"},
	)

	IssuesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_issues_rejected_total",
			Help: "库存发放被拒绝总数",
		},
		[]string{"platform", "reason"},
	)

	EngineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "stock_engine_duration_seconds",
			Help: "分配引擎Lua脚本执行耗时（秒）",
			// Redis脚本通常在毫秒级完成，桶向低区间倾斜
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"script"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}
