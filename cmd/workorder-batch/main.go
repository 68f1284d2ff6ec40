package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/extract"
	"github.com/joseph-ayodele/workorder-tracker/internal/monday"
	"github.com/joseph-ayodele/workorder-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
	"github.com/joseph-ayodele/workorder-tracker/internal/source"
)

// printError prints an error message to stderr, falling back to stdout.
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		ownerEmail = flag.String("owner", "", "email of the user the fetched work orders belong to (required)")
		limit      = flag.Int("limit", 0, "override FETCH_LIMIT for this run")
		unseen     = flag.Bool("unseen", false, "fetch only unseen messages")
	)
	flag.Parse()

	if *ownerEmail == "" {
		printError("Error: --owner is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateMailbox(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *limit > 0 {
		cfg.Mailbox.FetchLimit = *limit
	}
	if *unseen {
		cfg.Mailbox.UnseenOnly = true
	}

	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{Path: cfg.Database.Path}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	usersRepo := repository.NewUserRepository(db, logger)
	owner, err := usersRepo.GetByEmail(ctx, *ownerEmail)
	if errors.Is(err, repository.ErrNotFound) {
		printError("Error: no user with email %s\n", *ownerEmail)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to look up owner", "error", err)
		os.Exit(1)
	}

	rules, err := loadRules(cfg.Extract.RulesPath)
	if err != nil {
		logger.Error("failed to load extraction rules", "path", cfg.Extract.RulesPath, "error", err)
		os.Exit(1)
	}

	workOrdersRepo := repository.NewWorkOrderRepository(db, logger)
	processor := pipeline.NewProcessor(
		logger,
		extract.NewPDFTextExtractor(logger),
		extract.NewFieldExtractor(rules),
		monday.NewClient(cfg.Board, nil, logger),
		workOrdersRepo,
	)

	mailbox := source.NewMailboxSource(cfg.Mailbox, logger)
	batch, err := processor.ProcessBatch(ctx, mailbox, owner.ID)
	if err != nil {
		logger.Error("batch fetch failed", "error", err)
		os.Exit(1)
	}

	for i, res := range batch.Results {
		if res.Err != nil {
			logger.Warn("unit failed", "index", i, "state", string(res.State), "error", res.Err)
		}
	}
	fmt.Printf("processed %d unit(s): %d succeeded, %d failed\n",
		len(batch.Results), batch.Succeeded, batch.Failed)
	if batch.Failed > 0 {
		os.Exit(1)
	}
}

func loadRules(path string) ([]extract.Rule, error) {
	if path == "" {
		return nil, nil
	}
	return extract.LoadRules(path)
}
