package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github-repo-scorer/internal/adapter/analyzer"
	"github-repo-scorer/internal/adapter/cache"
	"github-repo-scorer/internal/adapter/github"
	"github-repo-scorer/internal/api"
	"github-repo-scorer/internal/config"
	"github-repo-scorer/internal/domain"
	"github-repo-scorer/internal/service"

	"github.com/sirupsen/logrus"
)

// application 组装好的依赖
type application struct {
	cache   *cache.TTLCache
	service *service.RepositoryService
	handler *api.Handler
}

// buildApp 按配置组装 fetcher -> scorer -> cache -> service -> handler
func buildApp(cfg *config.Config, logger *logrus.Logger) (*application, error) {
	fetcher, err := github.NewFetcher(cfg.GitHub.Token, github.Options{
		BaseURL:    cfg.GitHub.BaseURL,
		Timeout:    cfg.GitHub.Timeout.Std(),
		MaxRetries: cfg.GitHub.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("init github client: %w", err)
	}

	scoreCache := cache.NewTTLCache(cfg.Cache.TTL.Std(), cfg.Cache.MaxEntries)
	svc := service.NewRepositoryService(fetcher, analyzer.NewRepoScorer(), scoreCache, cfg.Cache.TTL.Std(), logger)

	return &application{
		cache:   scoreCache,
		service: svc,
		handler: api.NewHandler(svc, logger),
	}, nil
}

// runServe 启动 HTTP 服务，ctx 结束后在 shutdown_timeout 内优雅关闭
func runServe(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr(), err)
	}
	return serve(ctx, ln, cfg, logger)
}

func serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger *logrus.Logger) error {
	app, err := buildApp(cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}

	go app.cache.Start()
	defer app.cache.Stop()

	srv := &http.Server{
		Handler:      app.handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", ln.Addr().String()).Info("🚀 HTTP 服务已启动")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("👋 收到停止信号，正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// runScore 获取并评分单个仓库，结果以 JSON 写到 out
func runScore(ctx context.Context, out io.Writer, cfg *config.Config, logger *logrus.Logger, target, exclude string) error {
	owner, name, err := parseTarget(target)
	if err != nil {
		return err
	}
	excluded, err := parseExclude(exclude)
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	info, err := app.service.FetchRepositoryInfo(ctx, owner, name, excluded)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// parseTarget 解析 "owner/name"
func parseTarget(target string) (string, string, error) {
	owner, name, ok := strings.Cut(target, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected <owner>/<name>", target)
	}
	return owner, name, nil
}

// parseExclude 与 HTTP 接口相同的规则：合法维度，最多两个
func parseExclude(raw string) (domain.Exclusions, error) {
	return domain.ParseLimitedExclusions(raw)
}
