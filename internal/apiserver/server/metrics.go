// Package server Prometheus 指标导出
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"capp-admin/internal/apiserver/carbonapp"
)

// Metrics 包含所有管理 API 指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// CApp 指标
	InstallsTotal    *prometheus.CounterVec
	RemovalsTotal    *prometheus.CounterVec
	RegistryPackages prometheus.Gauge
}

// NewMetrics 创建指标实例并注册到 reg（nil 时使用默认注册表）
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		InstallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "carbonapp_installs_total",
				Help:      "Total carbon application upload entries by result",
			},
			[]string{"result"},
		),
		RemovalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "carbonapp_removals_total",
				Help:      "Total carbon application file removals by result",
			},
			[]string{"result"},
		),
		RegistryPackages: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "carbonapp_registry_packages",
				Help:      "Number of carbon applications in the last registry snapshot",
			},
		),
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将删除模式替换为占位符避免高基数
func normalizePath(path string) string {
	if strings.HasPrefix(path, carbonapp.BasePath+"/") {
		return carbonapp.BasePath + "/{name}"
	}
	return path
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordInstall 记录安装条目
func (m *Metrics) RecordInstall(result string) {
	m.InstallsTotal.WithLabelValues(result).Inc()
}

// RecordRemoval 记录文件删除
func (m *Metrics) RecordRemoval(result string) {
	m.RemovalsTotal.WithLabelValues(result).Inc()
}

// SetPackagesCount 设置注册表中的应用数量
func (m *Metrics) SetPackagesCount(n int) {
	m.RegistryPackages.Set(float64(n))
}

var _ carbonapp.Recorder = (*Metrics)(nil)
