package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grammophone/fts-query-translator/internal/analytics"
	"github.com/grammophone/fts-query-translator/internal/history"
	"github.com/grammophone/fts-query-translator/internal/translator"
	"github.com/grammophone/fts-query-translator/internal/translator/cache"
	"github.com/grammophone/fts-query-translator/internal/translator/compiler"
	"github.com/grammophone/fts-query-translator/internal/translator/handler"
	"github.com/grammophone/fts-query-translator/pkg/config"
	"github.com/grammophone/fts-query-translator/pkg/health"
	"github.com/grammophone/fts-query-translator/pkg/kafka"
	"github.com/grammophone/fts-query-translator/pkg/logger"
	"github.com/grammophone/fts-query-translator/pkg/metrics"
	"github.com/grammophone/fts-query-translator/pkg/middleware"
	"github.com/grammophone/fts-query-translator/pkg/postgres"
	pkgredis "github.com/grammophone/fts-query-translator/pkg/redis"
	"github.com/grammophone/fts-query-translator/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	defaultMode, err := compiler.ParsePhraseMode(cfg.Translator.DefaultMode)
	if err != nil {
		slog.Error("invalid translator config", "error", err)
		os.Exit(1)
	}
	slog.Info("starting translator service",
		"port", cfg.Server.Port,
		"default_mode", defaultMode.String(),
	)

	svc := translator.New(translator.Options{
		MaxDepth:       cfg.Translator.MaxNestingDepth,
		ExtraStopwords: cfg.Translator.ExtraStopwords,
	})

	m := metrics.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	var translationCache *cache.TranslationCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, translation caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		translationCache = cache.New(redisClient, cfg.Redis)
		slog.Info("translation cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TranslationEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.TranslationEvents)

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.TranslationEvents, analytics.HandleEvent(aggregator))
	analyticsH := analytics.NewHandler(aggregator)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()

	var historyStore *history.Store
	var db *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		var connErr error
		db, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		slog.Warn("postgres unavailable, translation history disabled", "error", err)
	} else {
		defer db.Close()
		historyStore = history.NewStore(db, m)
		if err := historyStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure history schema", "error", err)
			os.Exit(1)
		}
		slog.Info("translation history enabled", "database", cfg.Postgres.Database)
	}

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(svc, translationCache, collector, historyStore, m,
		defaultMode, cfg.Translator.MaxQueryLength)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/translate", h.Translate)
	mux.HandleFunc("POST /api/v1/translate", h.Translate)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/history", h.History)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("translator service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("translator service stopped")
}
