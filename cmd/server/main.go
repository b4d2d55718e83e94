package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkscope/go-server/internal/analyzer"
	"linkscope/go-server/internal/config"
	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/handlers"
	"linkscope/go-server/internal/intel"
	"linkscope/go-server/internal/middleware"
	"linkscope/go-server/internal/reputation"
	"linkscope/go-server/internal/telemetry"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	dnsclient.SetUserAgentVersion(cfg.AppVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var allowlistOpts []reputation.AllowlistOption
	if cfg.AllowlistFeed != "" {
		allowlistOpts = append(allowlistOpts, reputation.WithFeedFile(cfg.AllowlistFeed))
	}
	if cfg.AllowlistFeedURL != "" {
		allowlistOpts = append(allowlistOpts, reputation.WithFeedURL(cfg.AllowlistFeedURL))
	}
	allowlist := reputation.NewAllowlist(slog.Default(), allowlistOpts...)
	if cfg.AllowlistFeedURL != "" {
		go allowlist.Run(ctx)
	}
	slog.Info("Reputation allowlist initialized", "domains", allowlist.Size())

	registry := telemetry.NewRegistry()
	provider := intel.NewHTTPProvider(intel.Keys{
		AbuseIPDB:  cfg.AbuseIPDBKey,
		VirusTotal: cfg.VirusTotalKey,
		IPInfo:     cfg.IPInfoToken,
	}, registry)

	riskAnalyzer := analyzer.New(provider, allowlist,
		analyzer.WithIntelTimeout(cfg.IntelTimeout),
		analyzer.WithMaxConcurrent(cfg.MaxConcurrent),
	)
	riskAnalyzer.Telemetry = registry
	slog.Info("Risk analyzer initialized",
		"intel_timeout", cfg.IntelTimeout,
		"max_concurrent", cfg.MaxConcurrent,
	)

	if cfg.Testing {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewInMemoryRateLimiter()
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_requests", middleware.RateLimitMaxRequests, "window_seconds", middleware.RateLimitWindow)

	healthHandler := handlers.NewHealthHandler(database, riskAnalyzer, cfg.MaintenanceNote)
	analyzeHandler := handlers.NewAnalyzeHandler(riskAnalyzer, database)
	analysisHandler := handlers.NewAnalysisHandler(database)
	historyHandler := handlers.NewHistoryHandler(database)
	statsHandler := handlers.NewStatsHandler(database)
	telemetryHandler := handlers.NewTelemetryHandler(riskAnalyzer, provider)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/api/health", healthHandler.HealthCheck)

	if cfg.Testing {
		router.POST("/api/analyze", analyzeHandler.Analyze)
	} else {
		router.POST("/api/analyze", middleware.AnalyzeRateLimit(rateLimiter), analyzeHandler.Analyze)
	}
	router.GET("/api/analysis/:id", analysisHandler.GetAnalysis)
	router.GET("/api/history", historyHandler.History)
	router.GET("/api/stats", statsHandler.Stats)
	router.GET("/api/telemetry", telemetryHandler.Telemetry)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting risk assessment server", "address", addr, "version", cfg.AppVersion)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
