package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finlens/internal/auth"
	"finlens/internal/backend"
	"finlens/internal/cache"
	"finlens/internal/config"
	"finlens/internal/core"
	apphttp "finlens/internal/http"
	"finlens/internal/llm"
	"finlens/internal/log"
	"finlens/internal/metrics"
	"finlens/internal/middleware/ratelimit"
	"finlens/internal/services"
	"finlens/internal/statement"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	metrics.Init()

	book, err := config.LoadRuleBook(cfg.ClassifierRulesPath)
	if err != nil {
		logger.Error("Failed to load classifier rules", log.FieldError, err, "path", cfg.ClassifierRulesPath)
		os.Exit(1)
	}
	classifier := core.NewClassifier(book)
	logger.Info("Classifier rules loaded",
		"expense", book.Expense.Labels(),
		"income", book.Income.Labels(),
		"statement", book.Statement.Labels())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}
	logger.Info("Initialized backend", "backend", result.Backend.Name(), "events", result.Publisher != nil)

	var gen llm.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.ModelTimeout,
		})
		if err != nil {
			logger.Error("Failed to initialize Gemini client", log.FieldError, err)
			os.Exit(1)
		}
		gen = g
	} else {
		logger.Warn("GEMINI_API_KEY not set, model-backed endpoints are disabled")
	}

	summaryCache := cache.NewLRUCache[core.Summary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	dashboardCache := cache.NewLRUCache[services.Dashboard](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	caches := cache.NewManager()
	caches.Register(summaryCache)
	caches.Register(dashboardCache)
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	summaries := services.NewSummaryService(result.Backend, summaryCache, dashboardCache)
	records := services.NewRecordService(result.Backend, result.Publisher, summaries, logger.WithComponent(log.ComponentRecords))
	insights := services.NewInsightService(services.InsightConfig{
		Generator:  gen,
		Classifier: classifier,
		Extractor:  statement.NewTextExtractor(),
		Summaries:  summaries,
		Currency:   cfg.CurrencySymbol,
		Logger:     logger.WithComponent(log.ComponentInsight),
	})

	var authMiddleware *auth.Middleware
	if cfg.JWTSecret != "" {
		authMiddleware = auth.NewMiddleware([]byte(cfg.JWTSecret))
		logger.Info("JWT authentication enabled for /api/")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Records:    records,
		Summaries:  summaries,
		Insights:   insights,
		Ready:      result.Backend.Ready,
		Classifier: classifier,
		Auth:       authMiddleware,
		Limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ModelTimeout:   cfg.ModelTimeout,
	})

	// Configure server timeouts and limits. Writes wait on the model.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.ModelTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finlens server", "port", cfg.Port, "backend", cfg.DataBackend, "model", gen != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
