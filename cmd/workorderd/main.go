package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/workorder-tracker/internal/auth"
	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/export"
	"github.com/joseph-ayodele/workorder-tracker/internal/extract"
	"github.com/joseph-ayodele/workorder-tracker/internal/monday"
	"github.com/joseph-ayodele/workorder-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
	"github.com/joseph-ayodele/workorder-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{Path: cfg.Database.Path}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	// Extraction rules: built-in defaults unless a rules file overrides.
	rules, err := loadRules(cfg.Extract.RulesPath)
	if err != nil {
		logger.Error("failed to load extraction rules", "path", cfg.Extract.RulesPath, "error", err)
		os.Exit(1)
	}

	usersRepo := repository.NewUserRepository(db, logger)
	workOrdersRepo := repository.NewWorkOrderRepository(db, logger)

	authSvc := auth.NewService(usersRepo, cfg.Server.JWTSecret, logger)
	boardClient := monday.NewClient(cfg.Board, nil, logger)
	processor := pipeline.NewProcessor(
		logger,
		extract.NewPDFTextExtractor(logger),
		extract.NewFieldExtractor(rules),
		boardClient,
		workOrdersRepo,
	)
	exporter := export.NewService(workOrdersRepo, logger)

	srv := server.New(cfg.Server.Addr, authSvc, workOrdersRepo, processor, exporter, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("stopped")
}

func loadRules(path string) ([]extract.Rule, error) {
	if path == "" {
		return nil, nil
	}
	return extract.LoadRules(path)
}
