// Package deploydir 部署目录操作
//
// 部署目录位于 {runtime-home}/repository/deployment/server/carbonapps，
// 存放 *.car 文件，由部署引擎扫描并部署。本包只负责文件的写入、匹配与删除，
// 注册表与目录内容的同步由部署引擎异步完成。
package deploydir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension CApp 文件扩展名
const Extension = ".car"

// ErrInvalidFileName 文件名不是合法的 CApp 文件名
var ErrInvalidFileName = errors.New("invalid carbon application file name")

// Dir 部署目录
type Dir struct {
	path string
}

// New 根据运行时主目录创建部署目录
func New(runtimeHome string) *Dir {
	return &Dir{path: filepath.Join(runtimeHome, "repository", "deployment", "server", "carbonapps")}
}

// NewAt 直接指定部署目录路径
func NewAt(path string) *Dir {
	return &Dir{path: path}
}

// Path 返回部署目录路径
func (d *Dir) Path() string {
	return d.path
}

// Ensure 确保部署目录存在
func (d *Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return fmt.Errorf("create deployment directory %s: %w", d.path, err)
	}
	return nil
}

// ValidFileName 校验 CApp 文件名
//
// 必须以 .car 结尾，且只能是单纯的文件名（不含路径分隔符，不是 . 或 ..），
// 防止上传文件名逃逸出部署目录。
func ValidFileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFileName)
	}
	if !strings.HasSuffix(name, Extension) {
		return fmt.Errorf("%w: %s must end with %s", ErrInvalidFileName, name, Extension)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %s must not contain a path", ErrInvalidFileName, name)
	}
	return nil
}

// Write 写入 CApp 文件，同名文件直接覆盖
func (d *Dir) Write(fileName string, data []byte) error {
	if err := ValidFileName(fileName); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(d.path, fileName), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", fileName, err)
	}
	return nil
}

// Match 列出名称包含 pattern 且以 .car 结尾的普通文件，按名称排序
func (d *Dir) Match(pattern string) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read deployment directory %s: %w", d.path, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, pattern) && strings.HasSuffix(name, Extension) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove 删除 CApp 文件
func (d *Dir) Remove(fileName string) error {
	if err := os.Remove(filepath.Join(d.path, fileName)); err != nil {
		return fmt.Errorf("delete %s: %w", fileName, err)
	}
	return nil
}
