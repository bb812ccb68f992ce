// CyberRAG web client, the conversational CVE intelligence frontend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/vulnwatch/cyberrag/internal/api"
	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/chat"
	"github.com/vulnwatch/cyberrag/internal/config"
	"github.com/vulnwatch/cyberrag/internal/feed"
	"github.com/vulnwatch/cyberrag/internal/identity"
	"github.com/vulnwatch/cyberrag/internal/middleware"
	"github.com/vulnwatch/cyberrag/internal/store"
	"github.com/vulnwatch/cyberrag/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "backend", cfg.BackendURL, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	client, err := backend.NewHTTPClient(backend.ClientConfig{
		BaseURL:        cfg.BackendURL,
		RequestTimeout: cfg.BackendTimeout,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize backend client", "error", err)
		os.Exit(1)
	}

	// The backend may come up after us; reachability is reported, not fatal.
	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(healthCtx); err != nil {
		slog.Warn("Backend not reachable at startup", "error", err)
	} else {
		slog.Info("Backend reachable")
	}
	healthCancel()

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize CVE cache", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close CVE cache", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("CVE cache health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("CVE cache connected", "path", cfg.DBPath)

	chatLogger, err := chat.NewConversationLogger(chat.ConversationLogConfig{
		Enabled:       cfg.ChatLog.Enabled,
		Dir:           cfg.ChatLog.Dir,
		GlobalEnabled: cfg.ChatLog.GlobalEnabled,
		GlobalPath:    cfg.ChatLog.GlobalPath,
		QueueSize:     cfg.ChatLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := chatLogger.Close(); closeErr != nil {
			slog.Error("Failed to close conversation logger", "error", closeErr)
		}
	}()

	// Initialize services and handlers.
	sessions := chat.NewManager(client, chatLogger, logger)
	handler := api.NewHandler(sessions, client, repo, cfg.CacheTTL)
	feedHandler := feed.NewHandler(sessions, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Routes.
	handler.RegisterHealth(r)
	handler.RegisterChatRoutes(r)
	handler.RegisterDashboardRoutes(r)

	// WebSocket live feed.
	r.Get("/ws/chat", feedHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket feed connections stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start session TTL worker.
	sessions.StartTTLWorker(ctx, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
