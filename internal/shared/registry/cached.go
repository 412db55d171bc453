package registry

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"capp-admin/internal/shared/model"
)

const snapshotKey = "packages"

// DefaultCacheTTL 默认快照缓存时长
const DefaultCacheTTL = 5 * time.Second

// Cached 为后端注册表增加 TTL 快照缓存
//
// 远程后端（Redis）每次 GET 都会往返一次，缓存后短时间内的列表请求复用同一快照。
// 安装/删除后由调用方 Invalidate。
type Cached struct {
	backend Registry
	cache   *gocache.Cache
}

// NewCached 创建带缓存的注册表，ttl <= 0 时使用 DefaultCacheTTL
func NewCached(backend Registry, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		backend: backend,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// ListPackages 优先返回缓存快照，未命中时读取后端
func (c *Cached) ListPackages(ctx context.Context) ([]*model.Package, error) {
	if v, found := c.cache.Get(snapshotKey); found {
		if pkgs, ok := v.([]*model.Package); ok {
			return clonePackages(pkgs), nil
		}
	}

	pkgs, err := c.backend.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(snapshotKey, pkgs)
	return clonePackages(pkgs), nil
}

// clonePackages 复制快照切片，调用方之间不共享底层数组
func clonePackages(pkgs []*model.Package) []*model.Package {
	if pkgs == nil {
		return nil
	}
	out := make([]*model.Package, len(pkgs))
	copy(out, pkgs)
	return out
}

// Invalidate 丢弃缓存快照
func (c *Cached) Invalidate() {
	c.cache.Delete(snapshotKey)
}

var (
	_ Registry    = (*Cached)(nil)
	_ Invalidator = (*Cached)(nil)
)
