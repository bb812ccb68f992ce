// refresh pulls recently modified CVEs from the backend into the local
// cache and prunes stale rows. It is meant to run nightly from cron:
//
//	0 3 * * * /usr/local/bin/cyberrag-refresh
//
// The window starts at the last recorded refresh (7 days back on first
// run) and ends now.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vulnwatch/cyberrag/internal/backend"
	"github.com/vulnwatch/cyberrag/internal/config"
	"github.com/vulnwatch/cyberrag/internal/store"
)

const (
	firstRunWindow = 7 * 24 * time.Hour
	pruneAge       = 90 * 24 * time.Hour
	fetchLimit     = 500
)

func main() {
	limit := flag.Int("limit", fetchLimit, "maximum CVEs to fetch per run")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, *limit, *timeout, logger); err != nil {
		slog.Error("Refresh failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, limit int, timeout time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := backend.NewHTTPClient(backend.ClientConfig{
		BaseURL:        cfg.BackendURL,
		RequestTimeout: cfg.BackendTimeout,
	}, logger)
	if err != nil {
		return err
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close CVE cache", "error", closeErr)
		}
	}()

	since, err := repo.LastRefresh(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	if since.IsZero() {
		since = now.Add(-firstRunWindow)
		slog.Info("No previous refresh recorded", "starting_from", since.Format(time.RFC3339))
	} else {
		slog.Info("Last refresh", "at", since.Format(time.RFC3339))
	}

	result, err := client.News(ctx, backend.NewsRequest{
		Filter:    "custom",
		Limit:     limit,
		StartDate: since.UTC().Format(time.RFC3339),
		EndDate:   now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	slog.Info("Fetched modified CVEs", "count", len(result.CVEs), "total", result.Total)

	if err := repo.UpsertCVEs(ctx, result.CVEs); err != nil {
		return err
	}

	pruned, err := repo.PruneOlderThan(ctx, pruneAge)
	if err != nil {
		return err
	}
	if pruned > 0 {
		slog.Info("Pruned stale cache entries", "count", pruned)
	}

	if err := repo.SetLastRefresh(ctx, now); err != nil {
		return err
	}

	slog.Info("Refresh complete", "upserted", len(result.CVEs), "window_start", since.Format(time.RFC3339))
	return nil
}
