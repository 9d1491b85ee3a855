package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuvia/backend/internal/adapters/cache"
	"github.com/neuvia/backend/internal/adapters/database"
	"github.com/neuvia/backend/internal/adapters/events"
	"github.com/neuvia/backend/internal/adapters/export"
	"github.com/neuvia/backend/internal/adapters/scoring"
	"github.com/neuvia/backend/internal/api/handlers"
	"github.com/neuvia/backend/internal/api/middleware"
	"github.com/neuvia/backend/internal/api/routes"
	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/catalog"
	"github.com/neuvia/backend/internal/infrastructure/clients/postgres"
	"github.com/neuvia/backend/internal/infrastructure/clients/redis"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	"github.com/neuvia/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Warn().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	cat, err := catalog.LoadOrDefault(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load symptom catalog")
	}
	logger.Info().
		Int("conditions", cat.Lexicon.Len()).
		Int("remedies", len(cat.Remedies.Entries())).
		Msg("Symptom catalog loaded")

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	if err := pgClient.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, using in-process locks and alert bus")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, "triage:")
			eventBus = events.NewRedisEventBus(redisClient)
		}
	}
	if eventBus == nil {
		eventBus = events.NewMemoryEventBus()
	}

	// Domain services
	symptomLogs := database.NewSymptomLogAdapter(pgClient, metrics)
	matcher := services.NewTriageMatcher(cat.Lexicon, cat.Remedies)
	aggregator := services.NewRiskAggregator(scoring.NewHTTPScorer(cfg.Scorer), cfg.Scorer.Timeout, metrics)
	trends := services.NewTrendNotificationService(symptomLogs, cfg.Intake.HistoryDays)
	intake := services.NewIntakeService(symptomLogs, aggregator, trends, cacheProvider, cfg.Intake.LockTTL)

	var exporter providers.ReportExporter
	if cfg.Report.ExportURL != "" {
		exporter = export.NewHTTPExporter(cfg.Report)
	} else {
		exporter = export.NewPDFExporter()
	}
	reports := services.NewReportService(exporter)

	sessions := services.NewChatSessionManager(matcher, services.ChatSessionOptions{
		ReplyDelay: cfg.Chat.ReplyDelay,
		Alerts:     eventBus,
		Metrics:    metrics,
	}, cfg.Chat.SessionTTL)
	go sessions.Run(ctx, cfg.Chat.SweepInterval)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, map[string]time.Duration{
			"/api/intake/fields":  time.Hour,
			"/api/triage/lexicon": time.Hour,
		})
	}

	router := routes.NewRouter(
		handlers.NewTriageHandler(matcher, cat.Lexicon),
		handlers.NewChatHandler(sessions),
		handlers.NewIntakeHandler(intake, trends),
		handlers.NewReportHandler(reports),
		handlers.NewAlertStreamHandler(eventBus),
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")

	// stop sessions first so in-flight replies are dropped, not delayed
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := eventBus.Close(); err != nil {
		logger.Warn().Err(err).Msg("Error closing event bus")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("Server stopped")
}
