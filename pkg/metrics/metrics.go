// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型速记：
//   - Counter（计数器）：只增不减，如HTTP请求总数、借出总数
//   - Gauge（仪表盘）：可增可减的瞬时值，如在借图书数
//   - Histogram（直方图）：观测值分布，如请求耗时的P50/P90/P99
//
// 命名规范：
//   - Counter以`_total`结尾（loans_issued_total）
//   - Histogram以单位结尾（http_request_duration_seconds）
//   - 避免高基数标签（不要用user_id做标签）
//
// 使用方式：
//  1. 启动时调用metrics.Init()
//  2. gin挂载GET /metrics → promhttp.Handler()
//  3. 业务代码调用metrics.LoansIssuedTotal.Inc()等
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（路由模板）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// LoansIssuedTotal 借出总数（Counter）
	LoansIssuedTotal prometheus.Counter

	// LoansReturnedTotal 归还总数（Counter）
	LoansReturnedTotal prometheus.Counter

	// LoansFailedTotal 借阅失败总数（Counter）
	// 标签：reason（unavailable/duplicate/not_found）
	LoansFailedTotal *prometheus.CounterVec

	// LoansOpen 当前在借数量（Gauge）
	LoansOpen prometheus.Gauge

	// ReservationsCreatedTotal 预约创建总数（Counter）
	ReservationsCreatedTotal prometheus.Counter

	// LoanIssueDuration 借出事务耗时（Histogram）
	// 借出包含行锁+台账扣减，耗时异常说明锁竞争严重
	LoanIssueDuration prometheus.Histogram
)

// Init 初始化并注册所有指标
// 说明：使用promauto自动注册到默认Registry，重复调用为空操作
func Init() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP请求总数",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP请求耗时（秒）",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
	}, []string{"method", "path"})

	HTTPRequestsInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_progress",
		Help: "正在处理的HTTP请求数",
	})

	LoansIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loans_issued_total",
		Help: "图书借出总数",
	})

	LoansReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loans_returned_total",
		Help: "图书归还总数",
	})

	LoansFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loans_failed_total",
		Help: "借阅失败总数",
	}, []string{"reason"})

	LoansOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loans_open",
		Help: "当前在借数量",
	})

	ReservationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "预约创建总数",
	})

	LoanIssueDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loan_issue_duration_seconds",
		Help:    "借出事务耗时（秒）",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
}

// GinMiddleware HTTP指标采集中间件
// 设计说明：
// 1. path使用c.FullPath()（路由模板如/api/v1/books/:id），避免高基数
// 2. 未匹配到路由时FullPath为空，归入"unmatched"
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPRequestsInProgress.Inc()

		c.Next()

		HTTPRequestsInProgress.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
