package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	boltadapter "github.com/ericfisherdev/gitcollection/internal/adapter/driven/bolt"
	githubadapter "github.com/ericfisherdev/gitcollection/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/gitcollection/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/gitcollection/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/gitcollection/internal/adapter/driving/web"
	"github.com/ericfisherdev/gitcollection/internal/application"
	"github.com/ericfisherdev/gitcollection/internal/config"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"store", cfg.Store,
		"db_path", cfg.DBPath,
		"github_api_url", cfg.GitHubAPIURL,
		"github_token", cfg.HasGitHubToken(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the collection store.
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	// 4. Create GitHub lookup client (unauthenticated when no token is set).
	ghClient, err := githubadapter.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		return err
	}
	if !cfg.HasGitHubToken() {
		slog.Info("no github token configured, lookups use the unauthenticated rate limit")
	}

	// 5. Create and hydrate the collection service.
	collectionSvc := application.NewCollectionService(ghClient, store, slog.Default())
	if err := collectionSvc.Initialize(ctx); err != nil {
		return err
	}

	// 6. Register API and GUI routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(collectionSvc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(collectionSvc, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("gitcollection started",
		"listen_addr", cfg.ListenAddr,
		"repositories", len(collectionSvc.Repositories()),
	)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown with 10s timeout to drain in-flight lookups.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 9. Retry a failed save before the store closes.
	if err := collectionSvc.Flush(shutdownCtx); err != nil {
		slog.Error("final flush failed", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openStore opens the configured CollectionStore and returns it with its close function.
func openStore(ctx context.Context, cfg *config.Config) (driven.CollectionStore, func() error, error) {
	switch cfg.Store {
	case config.StoreBolt:
		store, err := boltadapter.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("bolt store opened", "path", cfg.DBPath)
		return store, store.Close, nil

	case config.StoreSQLite:
		// Dual reader/writer with WAL mode; migrations run on the writer.
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("sqlite store opened", "path", cfg.DBPath, "schema_version", version)
		return sqliteadapter.NewCollectionRepo(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
