// Package main API Gateway 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"novelforge-api/internal/application/generation"
	"novelforge-api/internal/config"
	"novelforge-api/internal/infrastructure/persistence/postgres"
	"novelforge-api/internal/infrastructure/persistence/redis"
	"novelforge-api/internal/interfaces/http/handler"
	"novelforge-api/internal/interfaces/http/router"
	"novelforge-api/pkg/logger"
	"novelforge-api/pkg/tracer"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化存储
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect postgres", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", err)
	}
	defer redisClient.Close()

	// 组装应用
	novelRepo := postgres.NewNovelRepository(pgClient)
	chapterRepo := postgres.NewChapterRepository(pgClient)
	characterRepo := postgres.NewCharacterRepository(pgClient)
	providerRepo := postgres.NewModelProviderRepository(pgClient)

	registry := generation.NewRegistry()
	resolver := generation.NewResolver(registry, generation.EnvKeys{
		Grok:   cfg.LLM.EnvKeys.Grok,
		Claude: cfg.LLM.EnvKeys.Claude,
	})
	promptBuilder := generation.NewPromptBuilder()
	contextBuilder := generation.NewContextBuilder(novelRepo, chapterRepo, characterRepo)
	streamer := generation.NewStreamer(nil,
		generation.DefaultRetryPolicy(cfg.LLM.Retry.MaxAttempts, cfg.LLM.Retry.Backoff))

	handlers := router.Handlers{
		Generate: handler.NewGenerateHandler(cfg, resolver, promptBuilder, contextBuilder, streamer, providerRepo),
		Provider: handler.NewProviderHandler(providerRepo),
		Health:   handler.NewHealthHandler(pgClient, redisClient),
	}
	r := router.New(cfg, handlers, redis.NewRateLimiter(redisClient))

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动并等待中断信号
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
