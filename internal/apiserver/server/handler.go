package server

import (
	"net/http"

	"capp-admin/internal/apiserver/auth"
	"capp-admin/internal/apiserver/carbonapp"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//   - GET /metrics - Prometheus 指标
//
// Carbon Application:
//   - GET    /management/applications                    - 列出已安装应用
//   - GET    /management/applications?carbonAppName={n}  - 应用详情
//   - POST   /management/applications                    - 上传安装
//   - DELETE /management/applications/{name}             - 按模式删除
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", MetricsHandler(h.gatherer))

	opts := []carbonapp.Option{
		carbonapp.WithLogger(h.logger.WithComponent("carbonapp")),
		carbonapp.WithMetrics(h.metrics),
	}
	if h.archive != nil {
		opts = append(opts, carbonapp.WithArchive(h.archive))
	}
	cappHandler := carbonapp.NewHandler(h.registry, h.dir, opts...)
	cappHandler.RegisterRoutes(mux)

	apiHandler := h.metrics.MetricsMiddleware(mux)
	authedHandler := auth.Middleware(h.authCfg)(apiHandler)
	return h.requestLogMiddleware(corsMiddleware(authedHandler))
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
