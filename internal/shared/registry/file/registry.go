// Package file 基于快照文件的部署注册表
//
// 部署引擎将已安装 CApp 列表导出为 YAML（或 JSON）快照文件，
// 本包加载该文件并在文件变化时重新加载。
package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"capp-admin/internal/shared/model"
	"capp-admin/internal/shared/registry"
	"capp-admin/pkg/logging"
)

// Snapshot 快照文件结构
//
//	applications:
//	  - name: HealthCareCompositeApp
//	    version: 1.0.0
//	    dependencies:
//	      - artifact: {name: HealthcareAPI, type: synapse/api}
type Snapshot struct {
	Applications []*model.Package `yaml:"applications"`
}

// Registry 快照文件注册表
type Registry struct {
	path    string
	mem     *registry.Memory
	watcher *Watcher
	logger  *logging.Logger
}

// Open 加载快照文件
//
// 文件不存在时视为空注册表（部署引擎尚未导出）。
func Open(path string, logger *logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Registry{
		path:   path,
		mem:    registry.NewMemory(),
		logger: logger,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path 返回快照文件路径
func (r *Registry) Path() string {
	return r.path
}

// Reload 重新读取快照文件
func (r *Registry) Reload() error {
	pkgs, err := Load(r.path)
	if err != nil {
		return err
	}
	r.mem.Set(pkgs)
	r.logger.Debug("Registry snapshot loaded", "path", r.path, "count", len(pkgs))
	return nil
}

// ListPackages 返回当前快照
func (r *Registry) ListPackages(ctx context.Context) ([]*model.Package, error) {
	return r.mem.ListPackages(ctx)
}

// Watch 监听快照文件变化并自动重新加载，直到 Close
func (r *Registry) Watch(cfg WatcherConfig) error {
	if r.watcher != nil {
		return nil
	}
	cfg.Path = r.path
	w, err := NewWatcher(cfg)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		w.Stop()
		return err
	}
	r.watcher = w

	go func() {
		for range changes {
			if err := r.Reload(); err != nil {
				r.logger.WithError(err).Warn("Registry snapshot reload failed", "path", r.path)
			}
		}
	}()
	return nil
}

// Close 停止监听
func (r *Registry) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Stop()
	r.watcher = nil
	return err
}

// Load 读取并解析快照文件
func Load(path string) ([]*model.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse registry snapshot %s: %w", path, err)
	}
	return snap.Applications, nil
}

var _ registry.Registry = (*Registry)(nil)
