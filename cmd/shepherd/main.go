package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gracechapel/shepherd/internal/backup"
	"github.com/gracechapel/shepherd/internal/database"
	"github.com/gracechapel/shepherd/internal/localstore"
	"github.com/gracechapel/shepherd/internal/logging"
	"github.com/gracechapel/shepherd/internal/server"
	"github.com/gracechapel/shepherd/internal/sqlstore"
	"github.com/gracechapel/shepherd/internal/store"
	offline "github.com/gracechapel/shepherd/internal/sync"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	logger := logging.Setup(env("SHEPHERD_LOG_LEVEL", "info"), os.Getenv("SHEPHERD_LOG_FILE"))

	port := env("SHEPHERD_PORT", "8080")
	snapshotPath := env("SHEPHERD_SNAPSHOT_PATH", "data/shepherd.json")
	queuePath := env("SHEPHERD_QUEUE_PATH", "data/pending-actions.json")
	remoteDSN := os.Getenv("SHEPHERD_REMOTE_DSN")

	local := localstore.New(snapshotPath, logger.With("component", "localstore"))
	queue := offline.NewQueue(queuePath)
	reconciler := offline.NewReconciler(queue, local, logger.With("component", "reconciler"))

	// Backend selection happens once here. With a remote DSN the hosted
	// relational store serves requests and its reachability drives the
	// online/offline state; without one the JSON snapshot is the backend
	// and the system is always online.
	var (
		active store.Store
		prober offline.Prober
	)
	if remoteDSN != "" {
		db, err := database.Open(remoteDSN)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		remote := sqlstore.New(db)
		active = remote
		prober = offline.DBProber(remote.DB())
		logger.Info("using remote store", "dsn", remoteDSN)
	} else {
		active = local
		if probeURL := os.Getenv("SHEPHERD_PROBE_URL"); probeURL != "" {
			prober = offline.HTTPProber(probeURL, nil)
		} else {
			prober = offline.AlwaysOnline()
		}
		logger.Info("using local snapshot store", "path", snapshotPath)
	}

	srv := server.New(server.Config{
		Store:         active,
		Queue:         queue,
		Reconciler:    reconciler,
		Prober:        prober,
		ProbeInterval: time.Duration(envInt("SHEPHERD_PROBE_SECONDS", 15)) * time.Second,
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("SHEPHERD_S3_ENDPOINT"),
				Bucket:    os.Getenv("SHEPHERD_S3_BUCKET"),
				Region:    env("SHEPHERD_S3_REGION", "auto"),
				AccessKey: os.Getenv("SHEPHERD_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("SHEPHERD_S3_SECRET_KEY"),
				Prefix:    env("SHEPHERD_S3_PREFIX", "shepherd"),
			},
			Files:         []string{snapshotPath, queuePath},
			Passphrase:    os.Getenv("SHEPHERD_BACKUP_PASSPHRASE"),
			Interval:      time.Duration(envInt("SHEPHERD_BACKUP_HOURS", 24)) * time.Hour,
			RetentionDays: envInt("SHEPHERD_BACKUP_RETENTION_DAYS", 30),
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Watcher().Start(ctx)
	defer srv.Watcher().Stop()

	if srv.BackupManager().Enabled() {
		srv.BackupManager().Start(ctx)
		defer srv.BackupManager().Stop()
	}

	// Periodic rate limiter cleanup.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("shepherd listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
