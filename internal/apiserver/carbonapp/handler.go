// Package carbonapp Carbon Application 管理资源 - HTTP 处理
//
// 提供已部署 CApp 的查询、安装与删除：
//   - GET    /management/applications                    - 列出已安装应用
//   - GET    /management/applications?carbonAppName=xxx  - 获取单个应用详情
//   - POST   /management/applications                    - 上传安装（multipart/form-data）
//   - DELETE /management/applications/{name}             - 按名称模式删除
//
// 文件组织：
//   - handler.go: Handler 定义与方法分发
//   - view.go: 列表/详情查询
//   - install.go: 上传安装
//   - remove.go: 模式删除
package carbonapp

import (
	"context"
	"net/http"

	"capp-admin/internal/shared/registry"
	"capp-admin/pkg/logging"
)

const (
	// BasePath 资源路由前缀
	BasePath = "/management/applications"

	// QueryParamName GET 查询单个应用的参数
	QueryParamName = "carbonAppName"

	// PathParamName DELETE 删除模式的路径参数
	PathParamName = "name"

	multipartFormData = "multipart/form-data"
)

// supportedMethods 资源支持的 HTTP 方法
var supportedMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete}

// Archive CApp 副本存储（对象存储）
type Archive interface {
	StorePackage(ctx context.Context, fileName string, data []byte) error
	RemovePackage(ctx context.Context, fileName string) error
}

// Directory 部署目录操作，由 deploydir.Dir 实现
type Directory interface {
	Path() string
	Write(fileName string, data []byte) error
	Match(pattern string) ([]string, error)
	Remove(fileName string) error
}

// Recorder 资源指标记录
type Recorder interface {
	RecordInstall(result string)
	RecordRemoval(result string)
	SetPackagesCount(n int)
}

// 指标结果标签
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Handler CApp 管理资源 HTTP 处理器
//
// 依赖说明：
//   - registry: 只读部署注册表（查询已安装应用）
//   - dir: 部署目录（安装/删除 .car 文件）
//   - archive: 可选的对象存储副本
//   - metrics: 可选的指标记录
//
// 每个请求独立处理，Handler 本身不持有请求间状态。
type Handler struct {
	registry registry.Registry
	dir      Directory
	archive  Archive
	metrics  Recorder
	logger   *logging.Logger
}

// Option Handler 可选配置
type Option func(*Handler)

// WithLogger 设置日志器
func WithLogger(l *logging.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithArchive 启用对象存储副本
func WithArchive(a Archive) Option {
	return func(h *Handler) { h.archive = a }
}

// WithMetrics 设置指标记录
func WithMetrics(m Recorder) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler 创建 CApp 管理资源处理器
func NewHandler(reg registry.Registry, dir Directory, opts ...Option) *Handler {
	h := &Handler{
		registry: reg,
		dir:      dir,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Methods 返回资源支持的 HTTP 方法
func (h *Handler) Methods() []string {
	out := make([]string, len(supportedMethods))
	copy(out, supportedMethods)
	return out
}

// RegisterRoutes 注册资源路由
//
// 路由不限定方法，所有请求都进入 Handle 分发，
// 这样不支持的方法也能得到统一的错误响应。
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle(BasePath, h)
	mux.Handle(BasePath+"/{"+PathParamName+"}", h)
}

// ServeHTTP 实现 http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Handle(w, r)
}

// ============================================================================
// 方法分发
// ============================================================================

// action 请求对应的操作，入口处一次性确定
type action int

const (
	actionUnsupported action = iota
	actionList
	actionGet
	actionInstall
	actionRemove
)

func (a action) String() string {
	switch a {
	case actionList:
		return "list"
	case actionGet:
		return "get"
	case actionInstall:
		return "install"
	case actionRemove:
		return "remove"
	default:
		return "unsupported"
	}
}

// classify 根据 HTTP 方法与参数确定操作
func classify(r *http.Request) action {
	switch r.Method {
	case http.MethodGet:
		if _, ok := packageNameParam(r); ok {
			return actionGet
		}
		return actionList
	case http.MethodPost:
		return actionInstall
	case http.MethodDelete:
		return actionRemove
	default:
		return actionUnsupported
	}
}

// packageNameParam 获取 GET 请求的应用名称
//
// 优先使用查询参数 carbonAppName，其次使用路径参数。
// 查询参数存在即视为按名称查询（即使为空）。
func packageNameParam(r *http.Request) (string, bool) {
	if values, ok := r.URL.Query()[QueryParamName]; ok {
		if len(values) > 0 {
			return values[0], true
		}
		return "", true
	}
	if name := r.PathValue(PathParamName); name != "" {
		return name, true
	}
	return "", false
}

// Handle 处理管理请求
//
// 总是返回 true：请求一定被处理，失败通过响应状态码和响应体表达。
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) bool {
	log := h.logger.WithContext(r.Context())
	log.Debug("Handling " + r.Method + " request.")

	switch classify(r) {
	case actionList:
		h.list(w, r)
	case actionGet:
		name, _ := packageNameParam(r)
		h.get(w, r, name)
	case actionInstall:
		h.install(w, r)
	case actionRemove:
		h.remove(w, r)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported HTTP method, "+r.Method+
			". Only GET , POST and DELETE methods are supported")
	}
	return true
}

// invalidateRegistry 目录变化后丢弃注册表快照缓存
func (h *Handler) invalidateRegistry() {
	if inv, ok := h.registry.(registry.Invalidator); ok {
		inv.Invalidate()
	}
}

func (h *Handler) recordInstall(result string) {
	if h.metrics != nil {
		h.metrics.RecordInstall(result)
	}
}

func (h *Handler) recordRemoval(result string) {
	if h.metrics != nil {
		h.metrics.RecordRemoval(result)
	}
}
