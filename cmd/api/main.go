package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/config"
	"github.com/Dan9191/cleancare-api/internal/handler"
	"github.com/Dan9191/cleancare-api/internal/jobs"
	"github.com/Dan9191/cleancare-api/internal/repository"
	"github.com/Dan9191/cleancare-api/internal/service"
	"github.com/Dan9191/cleancare-api/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, logger, cfg)
	stop()
	if err != nil {
		logger.Errorf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Every resource it opens is released before it returns.
func run(ctx context.Context, logger *logrus.Logger, cfg *config.Config) error {
	// Initialize database
	openCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.Open(openCtx, cfg.DBDriver, cfg.DBConn)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)

	if cfg.SeedUsersPath != "" {
		created, err := svc.SeedUsersFromFile(ctx, cfg.SeedUsersPath)
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		logger.WithField("created", created).Info("Seed users applied")
	}

	// Scheduled digest
	var mailer jobs.Mailer
	if cfg.SMTPEnabled() {
		mailer = email.NewSender(cfg, logger)
	}
	scheduler, err := jobs.Schedule(cfg.DigestCron, jobs.NewDigest(svc, mailer, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	scheduler.Start()

	// Setup router
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r := handler.NewRouter(svc, logger, cfg, reg)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		<-scheduler.Stop().Done()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", ln.Addr())
		serveErr <- server.Serve(ln)
	}()

	var failed error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			failed = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Digest still running at shutdown")
	}
	return failed
}
