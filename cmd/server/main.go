package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sholas-io/onboard/api"
	dbembed "github.com/sholas-io/onboard/db"
	"github.com/sholas-io/onboard/internal/config"
	"github.com/sholas-io/onboard/internal/db"
	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/internal/repository/sqlite"
	"github.com/sholas-io/onboard/internal/storage"
	"github.com/sholas-io/onboard/internal/tasks"
	"github.com/sholas-io/onboard/pkg/repository"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting onboard server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	if err := db.Migrate(ctx, database, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	blobs, err := storage.NewBlobStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Background workers for promotion and notification tasks.
	repo := sqlite.New(database, logger)
	taskRepo := tasks.NewRepository(database)
	pool := tasks.NewWorkerPool(taskRepo, taskHandlers(repo, logger), logger, cfg.WorkerCount)
	pool.Start(ctx)

	importSchema, err := dbembed.SeedFiles.ReadFile("seed/question_import_v1.json")
	if err != nil {
		log.Fatalf("Failed to read import schema: %v", err)
	}

	handler, quizHandler, err := api.SetupRoutes(cfg, version, buildTime, database, blobs, pool, importSchema, logger)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Release quiz timers and stop workers before closing the DB.
	quizHandler.Sessions().Close()
	pool.Stop()

	if err := database.Close(); err != nil {
		logger.Error("close db", "err", err)
	}

	logger.Info("server exited")
}

// taskHandlers binds task types to their implementations. Promotion applies
// the approved -> employee transition; a profile that moved elsewhere in the
// meantime fails the task permanently rather than retrying forever.
func taskHandlers(profileRepo repository.ProfileRepo, logger *slog.Logger) map[string]tasks.Handler {
	return map[string]tasks.Handler{
		tasks.TypePromoteEmployee: func(ctx context.Context, t *tasks.Task) error {
			var p tasks.PromotePayload
			if err := json.Unmarshal(t.Payload, &p); err != nil {
				return fmt.Errorf("decode promote payload: %w", err)
			}
			profile, err := profileRepo.GetProfile(ctx, p.UserID)
			if err != nil {
				return err
			}
			if profile == nil {
				logger.Warn("promotion target missing", "user_id", p.UserID)
				return nil
			}
			if err := lifecycle.Promote(profile); err != nil {
				logger.Warn("promotion skipped", "user_id", p.UserID, "status", profile.Status, "err", err)
				return nil
			}
			if err := profileRepo.UpdateProfile(ctx, profile); err != nil {
				return err
			}
			logger.Info("profile promoted to employee", "user_id", p.UserID)
			return nil
		},
		tasks.TypeNotifyEmail: func(ctx context.Context, t *tasks.Task) error {
			var n tasks.NotifyPayload
			if err := json.Unmarshal(t.Payload, &n); err != nil {
				return fmt.Errorf("decode notify payload: %w", err)
			}
			// No real mail gateway is wired up; the send is a structured log.
			logger.Info("sending notification email",
				"user_id", n.UserID,
				"email", n.Email,
				"template", n.Template,
				"reason", n.Reason,
			)
			return nil
		},
	}
}
