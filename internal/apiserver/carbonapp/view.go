package carbonapp

import (
	"net/http"

	"capp-admin/internal/shared/model"
	"capp-admin/internal/shared/registry"
)

// list 列出已安装应用
// GET /management/applications
//
// 响应：{"count": n, "list": [{"name": ..., "version": ...}]}，顺序与注册表一致。
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.registry.ListPackages(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("List carbon applications failed")
		writeError(w, http.StatusInternalServerError, "failed to list carbon applications")
		return
	}
	if h.metrics != nil {
		h.metrics.SetPackagesCount(len(pkgs))
	}
	writeJSON(w, http.StatusOK, model.NewPackageList(pkgs))
}

// get 获取单个应用详情
// GET /management/applications?carbonAppName={name}
//
// 未找到时只返回 404 状态码，不带响应体。
func (h *Handler) get(w http.ResponseWriter, r *http.Request, name string) {
	pkg, err := registry.Find(r.Context(), h.registry, name)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("Get carbon application failed", "name", name)
		writeError(w, http.StatusInternalServerError, "failed to list carbon applications")
		return
	}
	if pkg == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, model.NewPackageView(pkg))
}
