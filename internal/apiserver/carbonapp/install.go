package carbonapp

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"capp-admin/internal/shared/deploydir"
)

const (
	installErrorPrefix  = "Error when deploying the Carbon Application : "
	installSuccess      = "Successfully added Carbon Application(s)"
	nullFileName        = "filename: <null>"
	transferEncodingB64 = "base64"
	multipartBodyPrefix = "multipart body: "
)

// installResult 单个上传条目的处理结果
type installResult struct {
	fileName string
	err      error
}

// install 上传安装 CApp
// POST /management/applications
//
// 每个 multipart 条目独立处理：文件名缺失、扩展名错误、解码或写入失败都只记为该条目失败，
// 继续处理其余条目。已写入的文件不回滚。
// 任一条目失败时返回 500，响应体列出失败的文件名。
// 请求体在处理过若干条目后损坏时同样按部分失败处理；尚未处理任何条目时返回 400。
func (h *Handler) install(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, multipartFormData) {
		writeError(w, http.StatusBadRequest, "Supports only for the Content-Type : "+multipartFormData)
		return
	}

	log := h.logger.WithContext(r.Context())

	mr, err := r.MultipartReader()
	if err != nil {
		log.WithError(err).Warn("Invalid multipart request")
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var results []installResult
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithError(err).Warn("Read multipart entry failed")
			if len(results) == 0 {
				writeError(w, http.StatusBadRequest, "invalid multipart body")
				return
			}
			h.recordInstall(ResultFailure)
			results = append(results, installResult{fileName: multipartBodyPrefix + err.Error(), err: err})
			break
		}
		results = append(results, h.installPart(r, part))
		part.Close()
	}

	var failed []string
	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res.fileName)
		}
	}
	if len(failed) < len(results) {
		h.invalidateRegistry()
	}

	if len(failed) == 0 {
		writeMessage(w, installSuccess)
		return
	}
	writeError(w, http.StatusInternalServerError, installErrorPrefix+strings.Join(failed, ", "))
}

// installPart 处理单个 multipart 条目
func (h *Handler) installPart(r *http.Request, part *multipart.Part) installResult {
	log := h.logger.WithContext(r.Context())

	fileName, ok := partFileName(part)
	if !ok {
		h.recordInstall(ResultFailure)
		log.Warn("Carbon application entry has no filename")
		return installResult{fileName: nullFileName, err: errors.New("missing filename")}
	}
	if err := deploydir.ValidFileName(fileName); err != nil {
		h.recordInstall(ResultFailure)
		log.WithFile(fileName).WithError(err).Warn("Rejected carbon application entry")
		return installResult{fileName: fileName, err: err}
	}

	data, err := readPartContent(part)
	if err != nil {
		h.recordInstall(ResultFailure)
		log.WithFile(fileName).WithError(err).Error(installErrorPrefix + fileName)
		return installResult{fileName: fileName, err: err}
	}

	if err := h.dir.Write(fileName, data); err != nil {
		h.recordInstall(ResultFailure)
		log.FileOpLog("write", fileName, err)
		return installResult{fileName: fileName, err: err}
	}
	h.recordInstall(ResultSuccess)
	log.Info("Successfully added Carbon Application : "+fileName, "dir", h.dir.Path())

	if h.archive != nil {
		if err := h.archive.StorePackage(r.Context(), fileName, data); err != nil {
			log.WithFile(fileName).WithError(err).Warn("Archive carbon application failed")
		}
	}
	return installResult{fileName: fileName}
}

// partFileName 读取 Content-Disposition 中原样的 filename 参数
//
// 不使用 Part.FileName，它会截掉路径部分，非法文件名需要原样进入失败列表。
func partFileName(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// readPartContent 读取条目内容
//
// 声明 Content-Transfer-Encoding: base64 的条目按 base64 解码（忽略换行等空白），
// 其余条目按原始字节处理。
func readPartContent(part *multipart.Part) ([]byte, error) {
	raw, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(part.Header.Get("Content-Transfer-Encoding")), transferEncodingB64) {
		return raw, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
	if err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return data, nil
}
