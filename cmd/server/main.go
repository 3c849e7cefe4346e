// Package main provides the EduBot chat server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/edubot/edubot-go/internal/buildinfo"
	"github.com/edubot/edubot-go/internal/chat"
	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/fallback"
	"github.com/edubot/edubot-go/internal/genai"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/logger"
	"github.com/edubot/edubot-go/internal/metrics"
	"github.com/edubot/edubot-go/internal/prompt"
	"github.com/edubot/edubot-go/internal/ratelimit"
	"github.com/edubot/edubot-go/internal/resolver"
	"github.com/edubot/edubot-go/internal/sentry"
	"github.com/edubot/edubot-go/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with optional Better Stack log shipping
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.WithField("version", buildinfo.Version).Info("Starting EduBot server")

	// Initialize error tracking (no-op without a token)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	} else if sentry.IsEnabled() {
		log.Info("Error tracking enabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry with Go and process collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the knowledge base, seeding the curated entries on first run
	matcher, err := loadKnowledge(ctx, db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load knowledge base")
	}
	m.SetKnowledgeEntries(matcher.Count())

	// Build the generation chain (Gemini primary, Groq fallback)
	generator, err := genai.NewChain(ctx, genai.Config{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		GroqAPIKey:   cfg.GroqAPIKey,
		GroqModel:    cfg.GroqModel,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create generation chain")
	}
	defer func() { _ = generator.Close() }()
	log.WithField("provider", generator.Provider().String()).
		WithField("enabled", generator.IsEnabled()).
		Info("Generation chain created")

	// Per-session rate limiter for the LLM tier
	limiter := ratelimit.NewSessionLimiter(ratelimit.SessionLimiterConfig{
		Burst:         cfg.LLMRateLimitBurst,
		RefillRate:    cfg.LLMRateLimitRefillSec,
		CleanupPeriod: config.RateLimiterCleanup,
	})
	defer limiter.Stop()
	limiter.OnDrop(func() { m.RecordRateLimiterDrop("llm") })
	limiter.OnUpdate(m.SetRateLimiterUsers)

	// Assemble the answer pipeline
	res := resolver.New(
		matcher,
		generator,
		fallback.NewResponder(),
		prompt.NewBuilder(cfg.HistoryWindow),
		resolver.Options{Limiter: limiter, Metrics: m, LLMTimeout: cfg.LLMTimeout},
	)

	chatHandler := chat.NewHandler(chat.HandlerConfig{
		DB:            db,
		Resolver:      res,
		Metrics:       m,
		Logger:        log,
		HistoryWindow: cfg.HistoryWindow,
	})

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		// Binds a request-scoped hub so captures carry request metadata
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	setupRoutes(router, chatHandler, db, matcher, registry, cfg)

	// HTTP server timeouts; see internal/config/timeouts.go
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	// Background jobs: retention pruning and gauge refresh
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		pruneConversations(groupCtx, db, cfg.ConversationRetention, m, log)
		return nil
	})
	group.Go(func() error {
		refreshDataMetrics(groupCtx, db, matcher, m, log)
		return nil
	})

	// Start server
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background jobs
	cancel()

	jobsDone := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(jobsDone)
	}()

	select {
	case <-jobsDone:
		log.Info("Background jobs stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	// Shutdown server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// loadKnowledge reads the knowledge base from storage, seeding the curated
// entries when the table is empty, and returns a matcher over it.
func loadKnowledge(ctx context.Context, db *storage.DB, log *logger.Logger) (*knowledge.Matcher, error) {
	count, err := db.CountKnowledgeEntries(ctx)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		created, updated, err := knowledge.Seed(ctx, db)
		if err != nil {
			return nil, err
		}
		log.WithField("created", created).
			WithField("updated", updated).
			Info("Knowledge base seeded")
	}

	entries, err := db.ListKnowledgeEntries(ctx)
	if err != nil {
		return nil, err
	}

	log.WithField("entries", len(entries)).Info("Knowledge base loaded")
	return knowledge.NewMatcher(entries), nil
}
