// Package main Carbon Application 管理 API 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capp-admin/internal/apiserver/auth"
	"capp-admin/internal/apiserver/server"
	"capp-admin/internal/config"
	"capp-admin/internal/shared/deploydir"
	objstore "capp-admin/internal/shared/minio"
	"capp-admin/internal/shared/registry"
	fileregistry "capp-admin/internal/shared/registry/file"
	redisregistry "capp-admin/internal/shared/registry/redis"
	"capp-admin/pkg/logging"
)

func main() {
	configDirFlag := flag.String("config", "", "配置文件目录")
	flag.Parse()
	if *configDirFlag != "" {
		config.SetConfigDir(*configDirFlag)
	}

	// 加载配置（自动加载 .env，环境变量覆盖 YAML）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting management API... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		Component: "capp-admin",
	})

	// 部署目录
	dir := deploydir.New(cfg.RuntimeHome)
	if err := dir.Ensure(); err != nil {
		log.Fatalf("Failed to prepare deployment directory: %v", err)
	}
	log.Printf("Deployment directory: %s", dir.Path())

	// 部署注册表
	reg, closeRegistry, err := openRegistry(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open registry: %v", err)
	}
	defer closeRegistry()

	opts := server.Options{
		Auth:   auth.Config{JWTSecret: cfg.Auth.JWTSecret},
		Logger: logger,
	}

	// 初始化 MinIO（可选，CApp 归档副本）
	if cfg.MinIO.Enabled() {
		client, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to create MinIO client: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = client.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to prepare MinIO bucket: %v", err)
		}
		opts.Archive = client
		log.Printf("Connected to MinIO [bucket=%s]", client.Bucket())
	}

	h := server.NewHandler(reg, dir, opts)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Management API listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openRegistry 按配置的后端创建部署注册表，返回对应的关闭函数
func openRegistry(cfg *config.Config, logger *logging.Logger) (registry.Registry, func(), error) {
	switch cfg.Registry.Backend {
	case config.RegistryFile:
		reg, err := fileregistry.Open(cfg.Registry.File, logger.WithComponent("registry"))
		if err != nil {
			return nil, nil, err
		}
		if err := reg.Watch(fileregistry.DefaultWatcherConfig()); err != nil {
			reg.Close()
			return nil, nil, err
		}
		log.Printf("Using file registry [path=%s]", reg.Path())
		return reg, func() { reg.Close() }, nil

	case config.RegistryRedis:
		backend, err := redisregistry.NewFromURL(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Connected to Redis registry [prefix=%s]", cfg.RedisPrefix)
		return registry.NewCached(backend, cfg.Registry.CacheTTL), func() { backend.Close() }, nil

	case config.RegistryMemory, "":
		log.Println("Using in-memory registry")
		return registry.NewMemory(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", cfg.Registry.Backend)
	}
}
