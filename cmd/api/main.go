package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shinyyama/book-market-backend/internal/ai"
	"github.com/shinyyama/book-market-backend/internal/auth"
	"github.com/shinyyama/book-market-backend/internal/cache"
	"github.com/shinyyama/book-market-backend/internal/config"
	"github.com/shinyyama/book-market-backend/internal/db"
	"github.com/shinyyama/book-market-backend/internal/logging"
	"github.com/shinyyama/book-market-backend/internal/repository"
	"github.com/shinyyama/book-market-backend/internal/server"
	"github.com/shinyyama/book-market-backend/internal/service"
	"github.com/shinyyama/book-market-backend/internal/storage"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, flush := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, File: cfg.LogFile})
	defer flush()
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("automaxprocs failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect error", zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(conn); err != nil {
			logger.Fatal("auto migrate error", zap.Error(err))
		}
	}

	var catalogCache *cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			catalogCache = cache.New(rdb, "bookmarket:")
		}
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("storage init error", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer store.Close()

	var answerer service.Answerer
	assistant, err := ai.NewBookAssistant(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	switch {
	case err == nil:
		answerer = assistant
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Info("book assistant disabled: GEMINI_API_KEY is not set")
	default:
		logger.Warn("book assistant init failed", zap.Error(err))
	}

	srv := server.New(server.Options{
		Repos:            repository.NewGormSet(conn),
		Issuer:           auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Store:            store,
		Cache:            catalogCache,
		Answerer:         answerer,
		Logger:           logger,
		CatalogCacheTTL:  cfg.CatalogCacheTTL,
		UploadMaxBytes:   cfg.UploadMaxBytes,
		AuthRateLimit:    cfg.AuthRateLimit,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		GitSHA:           cfg.GitSHA,
		BuildTime:        cfg.BuildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("git_sha", cfg.GitSHA))
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
		logger.Info("server stopped")
	}
}
