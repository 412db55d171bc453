// Package redis 基于 Redis 的部署注册表
//
// 部署引擎将注册表发布到 Redis：
//   - {prefix}:apps          LIST，按注册顺序保存应用名称
//   - {prefix}:app:{name}    STRING，单个应用的 JSON 文档
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"capp-admin/internal/shared/model"
	"capp-admin/internal/shared/registry"
)

// DefaultPrefix 默认键前缀
const DefaultPrefix = "capp:registry"

// Registry Redis 注册表
type Registry struct {
	client *redis.Client
	prefix string
}

// NewFromURL 从 URL 创建 Redis 注册表
func NewFromURL(redisURL, prefix string) (*Registry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Registry] Connected to %s", opts.Addr)
	return NewFromClient(client, prefix), nil
}

// NewFromClient 从现有 Redis 客户端创建注册表
func NewFromClient(client *redis.Client, prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{client: client, prefix: prefix}
}

// Close 关闭 Redis 连接
func (r *Registry) Close() error {
	return r.client.Close()
}

// AppsKey 应用名称列表键
func (r *Registry) AppsKey() string {
	return r.prefix + ":apps"
}

// AppKey 单个应用文档键
func (r *Registry) AppKey(name string) string {
	return r.prefix + ":app:" + name
}

// ListPackages 读取名称列表，再用 pipeline 批量获取应用文档
func (r *Registry) ListPackages(ctx context.Context) ([]*model.Package, error) {
	names, err := r.client.LRange(ctx, r.AppsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list registry apps: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.Get(ctx, r.AppKey(name))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get registry apps: %w", err)
	}

	docs := make([]string, len(names))
	for i, cmd := range cmds {
		val, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get registry app %s: %w", names[i], err)
		}
		docs[i] = val
	}
	return decodePackages(names, docs)
}

// decodePackages 按名称顺序解码应用文档
//
// 文档为空表示名称与文档之间被并发删除，跳过。
// 文档缺省 name 时以列表中的名称为准。
func decodePackages(names, docs []string) ([]*model.Package, error) {
	pkgs := make([]*model.Package, 0, len(names))
	for i, name := range names {
		if docs[i] == "" {
			continue
		}
		var p model.Package
		if err := json.Unmarshal([]byte(docs[i]), &p); err != nil {
			return nil, fmt.Errorf("decode registry app %s: %w", name, err)
		}
		if p.Name == "" {
			p.Name = name
		}
		pkgs = append(pkgs, &p)
	}
	return pkgs, nil
}

var _ registry.Registry = (*Registry)(nil)
