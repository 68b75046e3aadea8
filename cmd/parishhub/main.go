package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stgabriel/parishhub/internal/ai"
	"github.com/stgabriel/parishhub/internal/blob"
	"github.com/stgabriel/parishhub/internal/config"
	"github.com/stgabriel/parishhub/internal/database"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/logging"
	"github.com/stgabriel/parishhub/internal/push"
	"github.com/stgabriel/parishhub/internal/server"
	"github.com/stgabriel/parishhub/internal/sheetdb"
	"github.com/stgabriel/parishhub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var reminders store.ReminderRepository
	var tasks store.TaskRepository
	switch cfg.StoreBackend {
	case config.BackendSheet:
		client := sheetdb.NewClient(cfg.SheetBaseURL, cfg.SheetToken)
		reminders = sheetdb.NewReminderStore(client)
		tasks = sheetdb.NewTaskStore(client)
		logger.Info("using spreadsheet backend for reminders and tasks")
	default:
		reminders = store.NewReminderStore(db)
		tasks = store.NewTaskStore(db)
	}

	mailer := email.NewClient(cfg.EmailToken, cfg.FromEmail, cfg.BaseURL)
	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIModel, aiOptions(cfg)...)
	uploader := blob.NewUploader(blob.Config{
		Endpoint:  cfg.S3.Endpoint,
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	})

	srv := server.New(db, reminders, tasks, mailer, aiClient, uploader, server.Config{
		AuthSecret:       []byte(cfg.AuthSecret),
		JobToken:         cfg.JobToken,
		BaseURL:          cfg.BaseURL,
		SummaryRecipient: cfg.SummaryRecipient,
		PushSubscriber:   "mailto:" + cfg.FromEmail,
		Push: push.Config{
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		},
	}, logger)

	scheduler, err := startScheduler(cfg, srv, logger)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("ParishHub running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	if scheduler != nil {
		scheduler.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func aiOptions(cfg config.Config) []ai.Option {
	if cfg.AIBaseURL == "" {
		return nil
	}
	return []ai.Option{ai.WithBaseURL(cfg.AIBaseURL)}
}

// startScheduler runs the batch jobs in-process at the configured local
// times. When neither time is set it returns nil and an external scheduler
// is expected to call the trigger endpoints.
func startScheduler(cfg config.Config, srv *server.Server, logger *slog.Logger) (*cron.Cron, error) {
	if cfg.GeneratorAt == "" && cfg.DigestAt == "" {
		return nil, nil
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	c := cron.New(cron.WithLocation(loc))

	if cfg.GeneratorAt != "" {
		spec, err := cronSpec(cfg.GeneratorAt)
		if err != nil {
			return nil, fmt.Errorf("GENERATOR_AT: %w", err)
		}
		if _, err := c.AddFunc(spec, func() {
			if _, err := srv.Generator().Run(time.Now().In(loc)); err != nil {
				logger.Error("scheduled generator run", "error", err)
			}
		}); err != nil {
			return nil, err
		}
	}

	if cfg.DigestAt != "" {
		spec, err := cronSpec(cfg.DigestAt)
		if err != nil {
			return nil, fmt.Errorf("DIGEST_AT: %w", err)
		}
		if _, err := c.AddFunc(spec, func() {
			if _, err := srv.Digest().Run(time.Now().In(loc)); err != nil {
				logger.Error("scheduled digest run", "error", err)
			}
		}); err != nil {
			return nil, err
		}
	}

	c.Start()
	logger.Info("in-process scheduler started", "generator_at", cfg.GeneratorAt, "digest_at", cfg.DigestAt)
	return c, nil
}

// cronSpec converts an HH:MM wall-clock time into a daily cron expression.
func cronSpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("expected HH:MM, got %q", at)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}
