// Package registry 部署注册表抽象接口
//
// 部署注册表是部署引擎维护的已安装 CApp 目录，本服务只读取其快照。
// 当前实现：
//   - Memory：进程内快照（测试 / 文件后端的存储）
//   - file.Registry：部署引擎导出的快照文件，文件变化时重新加载
//   - redis.Registry：部署引擎发布到 Redis 的快照
//   - Cached：为任意后端增加 TTL 快照缓存
package registry

import (
	"context"

	"capp-admin/internal/shared/model"
)

// Registry 只读部署注册表
//
// ListPackages 返回当前快照，顺序即注册表迭代顺序。
type Registry interface {
	ListPackages(ctx context.Context) ([]*model.Package, error)
}

// Invalidator 可丢弃缓存快照的注册表
type Invalidator interface {
	Invalidate()
}

// Find 在同一份快照中按名称精确查找应用
//
// 未找到时返回 (nil, nil)。
func Find(ctx context.Context, reg Registry, name string) (*model.Package, error) {
	pkgs, err := reg.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pkgs {
		if p != nil && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}
