// Package server 管理 API 的路由与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义与通用工具函数
//   - handler.go: 路由与中间件
//   - metrics.go: Prometheus 指标
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"capp-admin/internal/apiserver/auth"
	"capp-admin/internal/apiserver/carbonapp"
	"capp-admin/internal/shared/deploydir"
	"capp-admin/internal/shared/registry"
	"capp-admin/pkg/logging"
)

// Handler 管理 API 入口
//
// 负责：
//   - 组装 CApp 资源及其依赖（注册表、部署目录、归档、指标）
//   - 路由与中间件（请求 ID、指标、认证、CORS）
type Handler struct {
	registry registry.Registry
	dir      *deploydir.Dir
	archive  carbonapp.Archive
	authCfg  auth.Config
	metrics  *Metrics
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// Options Handler 可选依赖
type Options struct {
	Archive    carbonapp.Archive     // 为 nil 时不归档
	Auth       auth.Config           // JWTSecret 为空时不认证
	Registerer prometheus.Registerer // 为 nil 时使用默认注册表
	Gatherer   prometheus.Gatherer   // 为 nil 时使用默认注册表
	Logger     *logging.Logger
}

// NewHandler 创建 Handler 实例
//
// 参数：
//   - reg: 只读部署注册表
//   - dir: 部署目录
//   - opts: 可选依赖
func NewHandler(reg registry.Registry, dir *deploydir.Dir, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		registry: reg,
		dir:      dir,
		archive:  opts.Archive,
		authCfg:  opts.Auth,
		metrics:  NewMetrics("capp_admin", opts.Registerer),
		gatherer: opts.Gatherer,
		logger:   logger,
	}
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// generateID 生成带前缀的唯一标识符
//
// 格式为：prefix-xxxxxxxxxxxx（6 字节随机数的十六进制）
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogMiddleware 注入请求 ID 并记录访问日志
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = generateID("req")
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), logging.RequestIDKey, id)
		ctx = context.WithValue(ctx, logging.RemoteKey, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		h.logger.WithContext(ctx).HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.RemoteAddr)
	})
}
