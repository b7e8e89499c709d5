package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/camerontabion/JurisFlo/docs"
	"github.com/camerontabion/JurisFlo/internal/cache"
	"github.com/camerontabion/JurisFlo/internal/config"
	"github.com/camerontabion/JurisFlo/internal/database"
	"github.com/camerontabion/JurisFlo/internal/database/migration"
	handlers "github.com/camerontabion/JurisFlo/internal/http/handler"
	"github.com/camerontabion/JurisFlo/internal/http/middleware"
	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/logger"
	"github.com/camerontabion/JurisFlo/internal/otel"
	"github.com/camerontabion/JurisFlo/internal/repository/postgres"
	"github.com/camerontabion/JurisFlo/internal/service"
	"github.com/camerontabion/JurisFlo/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title JurisFlo API
// @version 1.0
// @description Legal document placeholder extraction and company data reconciliation.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(cfg.LogMode, cfg.Location())
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", "error", err.Error())
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("database_connect_failed", "error", err.Error())
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("database_migration_failed", "error", err.Error())
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("storage_init_failed", "error", err.Error())
	}

	// The extraction cache is optional; without REDIS_URL every parse asks the model.
	var extractionCache cache.ExtractionCache = cache.Nop{}
	var checks []handlers.DependencyCheck
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTLSec)*time.Second)
		if err != nil {
			log.Fatal("cache_init_failed", "error", err.Error())
		}
		defer rc.Close()
		extractionCache = rc
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: rc.Ping})
	} else {
		log.Warn("extraction_cache_disabled", "reason", "REDIS_URL is empty")
	}

	var client llm.Client
	gemini, err := llm.NewGemini(ctx, cfg.LLM)
	switch {
	case err == nil:
		client = gemini
		log.Info("llm_configured", "model", cfg.LLM.Model)
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("llm_disabled", "reason", "GEMINI_API_KEY is empty")
		client = llm.Disabled{}
	default:
		log.Fatal("llm_init_failed", "error", err.Error())
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	companyRepo := postgres.NewCompanyPostgres(db)
	msgRepo := postgres.NewMessagePostgres(db)

	docSvc := service.NewDocumentService(objStore, docRepo, companyRepo, client, extractionCache, log, service.DocumentOptions{
		SnippetPadding: cfg.SnippetPadding,
		// Download and text extraction on top of the model call.
		ParseTimeout: time.Duration(cfg.LLM.TimeoutSec)*time.Second + time.Minute,
	})
	companySvc := service.NewCompanyService(companyRepo, docRepo)
	chatSvc := service.NewChatService(docSvc, docRepo, msgRepo, client, log, cfg.LLM.HistoryLimit)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", "error", err.Error())
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.MaxUploadBytes,
	})

	// Tracing first so the request ID and logs can attach to the span.
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Checks:    checks,
		Documents: docSvc,
		Companies: companySvc,
		Chat:      chatSvc,
		Metrics:   reg,
	})

	// Swagger UI with dynamic host and scheme
	docs.SwaggerInfo.Host = cfg.AppHost
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_starting", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server_failed", "error", err.Error())
		}
	case <-ctx.Done():
		log.Info("server_stopping")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", "error", err.Error())
	}
	// Background parses finish (or time out) before their dependencies close.
	docSvc.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("tracing_shutdown_failed", "error", err.Error())
	}
	log.Info("server_stopped")
}
