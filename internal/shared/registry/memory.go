package registry

import (
	"context"
	"sync"

	"capp-admin/internal/shared/model"
)

// Memory 进程内注册表快照
type Memory struct {
	mu   sync.RWMutex
	pkgs []*model.Package
}

// NewMemory 创建内存注册表
func NewMemory(pkgs ...*model.Package) *Memory {
	m := &Memory{}
	m.Set(pkgs)
	return m
}

// Set 整体替换快照
func (m *Memory) Set(pkgs []*model.Package) {
	snapshot := make([]*model.Package, len(pkgs))
	copy(snapshot, pkgs)

	m.mu.Lock()
	m.pkgs = snapshot
	m.mu.Unlock()
}

// ListPackages 返回快照副本
func (m *Memory) ListPackages(ctx context.Context) ([]*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Package, len(m.pkgs))
	copy(out, m.pkgs)
	return out, nil
}

var _ Registry = (*Memory)(nil)
