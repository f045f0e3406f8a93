package monitor

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal 按路由模板与状态码统计请求数
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration 发送接口会等待回执, 桶上限放宽到 60s
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		},
		[]string{"method", "path"},
	)

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Requests currently being served.",
	})
)

var initOnce sync.Once

// Init 注册 HTTP 与业务指标, 可重复调用
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, HTTPInFlight)
		InitBusinessMetrics()
	})
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// PrometheusMiddleware returns a gin middleware for monitoring
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath() // 路由模板, 例如 /api/v1/blocks/:number
		if path == "" {
			// 未匹配的路由不计入, 避免标签基数膨胀
			c.Next()
			return
		}

		HTTPInFlight.Inc()
		start := time.Now()
		c.Next()
		HTTPInFlight.Dec()

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
