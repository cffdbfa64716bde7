// cmd/advisor-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pcaf-advisor/internal/common/config"
	"pcaf-advisor/internal/common/logger"
	"pcaf-advisor/internal/common/observability"
	"pcaf-advisor/internal/knowledge"
	"pcaf-advisor/internal/pipeline"
	"pcaf-advisor/internal/retriever"
	"pcaf-advisor/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zapBoot := logger.New("info", "console")
		zapBoot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting advisor server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	jaegerURL := ""
	if cfg.Tracing.Enabled {
		jaegerURL = cfg.Tracing.JaegerURL
	}
	obs := observability.New(cfg.App.Name, jaegerURL)
	defer obs.Shutdown()

	// --- Optional collection-id cache ---
	var cache *retriever.CollectionCache
	if cfg.Cache.Enabled {
		cache = retriever.NewCollectionCache(cfg.Cache)
		if err := cache.Ping(context.Background()); err != nil {
			zapLog.Warn("redis unavailable, running without collection cache", zap.Error(err))
			cache.Close()
			cache = nil
		} else {
			defer cache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Semantic retriever ---
	var semantic retriever.Retriever
	if cfg.APIs.SemanticSearchConfigured() {
		semantic = retriever.New(cfg.APIs, cfg.Pipeline.MaxCandidates, cache, log)
		zapLog.Info("Semantic retriever enabled",
			zap.String("collection", cfg.APIs.VectorSearch.Collection),
		)
	} else {
		zapLog.Warn("Semantic search credentials missing, answers start at the pattern tier")
	}

	p := pipeline.New(semantic, knowledge.DefaultTable(), cfg.Pipeline, obs, log)
	handler := server.NewHandler(p, log)
	mux := server.NewServeMux(handler, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Advisor server stopped gracefully")
}
