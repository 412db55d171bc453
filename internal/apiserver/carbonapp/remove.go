package carbonapp

import (
	"net/http"
)

// remove 按名称模式删除 CApp
// DELETE /management/applications/{name}
//
// 删除部署目录中名称包含 {name} 且以 .car 结尾的所有文件。
// 无匹配时返回 500（不是 404）；删除过程中出错立即中止，已删除的文件不恢复。
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	pattern := r.PathValue(PathParamName)
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "Missing required "+PathParamName+" parameter in the path")
		return
	}

	log := h.logger.WithContext(r.Context())

	matches, err := h.dir.Match(pattern)
	if err != nil {
		h.recordRemoval(ResultFailure)
		log.WithError(err).Error("Error when undeploying the Carbon Application", "pattern", pattern)
		writeError(w, http.StatusInternalServerError, "Error when undeploying the Carbon Application")
		return
	}
	if len(matches) == 0 {
		writeError(w, http.StatusInternalServerError,
			"Carbon Application(s) named or patterned '"+pattern+"' does not exist")
		return
	}

	for i, fileName := range matches {
		if err := h.dir.Remove(fileName); err != nil {
			h.recordRemoval(ResultFailure)
			log.FileOpLog("delete", fileName, err)
			if i > 0 {
				h.invalidateRegistry()
			}
			writeError(w, http.StatusInternalServerError, "Error when undeploying the Carbon Application")
			return
		}
		h.recordRemoval(ResultSuccess)
		log.Info(fileName+" file deleted from "+h.dir.Path()+" directory", "pattern", pattern)

		if h.archive != nil {
			if err := h.archive.RemovePackage(r.Context(), fileName); err != nil {
				log.WithFile(fileName).WithError(err).Warn("Remove archived carbon application failed")
			}
		}
	}
	h.invalidateRegistry()

	writeMessage(w, "Successfully removed Carbon Application(s) named "+pattern)
}
