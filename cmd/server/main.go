package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/stewardhq/steward/common/id"
	"github.com/stewardhq/steward/common/llm"
	"github.com/stewardhq/steward/common/logger"
	"github.com/stewardhq/steward/common/otel"
	"github.com/stewardhq/steward/core/config"
	"github.com/stewardhq/steward/internal/command"
	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/http/handler/webhook"
	"github.com/stewardhq/steward/internal/http/middleware"
	httprouter "github.com/stewardhq/steward/internal/http/router"
	"github.com/stewardhq/steward/internal/policy"
	"github.com/stewardhq/steward/internal/review"
	"github.com/stewardhq/steward/internal/scheduler"
	"github.com/stewardhq/steward/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "steward starting",
		"env", cfg.Env,
		"repo", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	gh := githubclient.New(ctx, cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)

	titleLLM, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.TitleModel(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create title llm client", "error", err)
		os.Exit(1)
	}
	reviewLLM, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create review llm client", "error", err)
		os.Exit(1)
	}

	engine := policy.NewEngine(gh, cfg.Policy)
	analyzer := review.NewAnalyzer(gh, titleLLM, reviewLLM, cfg.Review)
	dispatcher := command.NewDispatcher(gh, analyzer, cfg.Policy.CommandPrefix)
	events := service.NewEventService(gh, engine, dispatcher, analyzer, cfg.Policy)

	sched, err := scheduler.New(cfg.Schedule, []scheduler.Job{
		{Name: "check_inactive_prs", Run: engine.SweepInactivePullRequests},
		{Name: "check_stale_issues", Run: engine.SweepStaleIssues},
		{Name: "close_stale_issues", Run: engine.SweepStaleIssueClosures},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create scheduler", "error", err)
		os.Exit(1)
	}

	schedCtx, stopSched := context.WithCancel(ctx)
	go sched.Run(schedCtx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, events)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")
	stopSched()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, events *service.EventService) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	webhookHandler := webhook.NewGitHubWebhookHandler(cfg.GitHub.WebhookSecret, events)
	httprouter.SetupRoutes(router, webhookHandler)

	return router
}
