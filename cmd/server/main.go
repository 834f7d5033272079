/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment (.env optional) and parse command-line flags
  2. Initialize SQLite store
  3. Seed company settings from SETTINGS_FILE, if set
  4. Create API handler, readiness scheduler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port      HTTP server port                 (APP_PORT, default 8080)
  -db        SQLite database path             (DATABASE_PATH, default payroll.db)
  -settings  Company settings YAML to seed    (SETTINGS_FILE)

ENVIRONMENT:
  LOG_LEVEL     logrus level (debug, info, warn, error)
  LOG_FORMAT    text or json
  CORS_ORIGINS  comma-separated allowed origins
  EXPORT_DIR    directory receiving a copy of every export file
  READINESS_INTERVAL_MINUTES  scheduled readiness checks (0 disables, default 60)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections and the readiness scheduler
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - config/config.go: Environment loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/settings"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("error loading env variables: %s", err)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	settingsFile := flag.String("settings", cfg.SettingsFile, "Company settings YAML to seed on startup")
	flag.Parse()

	logger := cfg.NewLogger()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *settingsFile != "" {
		if err := seedSettings(context.Background(), store, *settingsFile, logger); err != nil {
			logger.Fatalf("Failed to seed settings: %v", err)
		}
	}

	if cfg.ExportDir != "" {
		if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
			logger.Fatalf("Failed to create export dir: %v", err)
		}
	}

	handler := api.NewHandler(store, logger)
	handler.ExportDir = cfg.ExportDir

	scheduler := api.NewReadinessScheduler(store, handler.Exporter, logger)
	scheduler.CheckInterval = cfg.ReadinessInterval
	scheduler.Enabled = cfg.ReadinessInterval > 0
	handler.Scheduler = scheduler
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(handler, cfg.CORSOrigins...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func seedSettings(ctx context.Context, store settings.Store, path string, logger *logrus.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	all, err := settings.Parse(data)
	if err != nil {
		return err
	}
	for _, cs := range all {
		if err := store.SaveSettings(ctx, cs); err != nil {
			return fmt.Errorf("company %s: %w", cs.CompanyID, err)
		}
		logger.WithField("company_id", cs.CompanyID).Info("seeded company settings")
	}
	return nil
}
