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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"questioner.dev/reference-db/internal/api"
	"questioner.dev/reference-db/internal/config"
	"questioner.dev/reference-db/internal/core"
	"questioner.dev/reference-db/internal/logger"
	"questioner.dev/reference-db/internal/store"
	"questioner.dev/reference-db/web"
)

func main() {
	initDB := flag.Bool("init-db", false, "Apply the configured seed files to the database and exit")
	rebuildIndex := flag.Bool("rebuild-index", false, "Rebuild the full-text search index from the questions table and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())
	logger.Debugf("Service starting with log level %s", logger.LevelString())

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	if *initDB || *rebuildIndex {
		code := 0
		if err := runMaintenance(dbStore, cfg, *initDB, *rebuildIndex); err != nil {
			logger.Errorf("%v", err)
			code = 1
		}
		dbStore.Close()
		os.Exit(code)
	}

	questionService := core.NewQuestionService(dbStore)
	categoryService := core.NewCategoryService(dbStore)

	api.RegisterCollectors(prometheus.DefaultRegisterer)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(questionService, categoryService, dbStore, cfg.Environment, cfg.HTTPPort, cfg.IsProduction())
	router := api.NewRouter(apiHandler, api.RouterOptions{
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Frontend:    web.Files,
		Metrics:     promhttp.Handler(),
	})

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Infof("Server running on http://localhost%s (environment: %s, pid: %d)", serverAddr, cfg.Environment, os.Getpid())
	if err := serve(srv, quit, cfg.ShutdownTimeout); err != nil {
		dbStore.Close()
		logger.Fatalf("%v", err)
	}

	// dbStore.Close() runs via defer once the HTTP server has drained.
	logger.Infof("HTTP server closed")
}

// serve runs srv until it fails or a signal arrives on quit, then drains
// in-flight requests for at most timeout. A listen failure is returned
// so the caller can release resources before exiting.
func serve(srv *http.Server, quit <-chan os.Signal, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("could not listen on %s: %w", srv.Addr, err)
	case <-quit:
	}
	logger.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	return nil
}

func runMaintenance(dbStore *store.SQLiteStore, cfg *config.Config, seed, rebuild bool) error {
	ctx := context.Background()

	if seed {
		logger.Infof("Applying %d seed files to %s", len(cfg.SeedFiles), cfg.DatabaseURL)
		applied, err := dbStore.ApplySeedFiles(ctx, cfg.SeedFiles, func(path string) {
			logger.Infof("Seeded %s", path)
		})
		if err != nil {
			return fmt.Errorf("database initialization stopped after %d of %d files: %w", applied, len(cfg.SeedFiles), err)
		}
		logger.Infof("Database initialization completed")
	}

	if rebuild {
		n, err := dbStore.RebuildSearchIndex(ctx)
		if err != nil {
			return fmt.Errorf("search index rebuild failed: %w", err)
		}
		logger.Infof("Search index rebuilt with %d questions", n)
	}
	return nil
}
