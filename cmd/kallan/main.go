package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alexanderramin/kallan/internal/analytics"
	"github.com/alexanderramin/kallan/internal/cli"
	"github.com/alexanderramin/kallan/internal/config"
	"github.com/alexanderramin/kallan/internal/db"
	"github.com/alexanderramin/kallan/internal/repository"
	"github.com/alexanderramin/kallan/internal/service"
	"github.com/mattn/go-isatty"
)

// shutdownTimeout bounds how long queued analytics may take to flush on exit.
const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	database, err := openDatabase(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	progressRepo := repository.NewSQLiteProgressRepo(database)
	analyticsRepo := repository.NewSQLiteAnalyticsRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Analytics run off the interaction path: the tracker only enqueues.
	sink, err := analytics.BuildSink(cfg.Analytics, analytics.SinkDeps{
		Repo:   analyticsRepo,
		HTTP:   cfg.HTTPConfig(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("configuring analytics: %w", err)
	}
	dispatcher := analytics.NewDispatcher(sink,
		analytics.WithQueueSize(cfg.AnalyticsQueue),
		analytics.WithRecordTimeout(cfg.AnalyticsTimeout),
		analytics.WithLogger(logger),
	)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dispatcher.Close(ctx); err != nil {
			logger.Warn("analytics flush incomplete", "error", err, "dropped", dispatcher.Dropped())
		}
	}()
	tracker := analytics.NewTracker(dispatcher)
	logger.Debug("session started", "session", tracker.SessionID())

	observer := service.NewLogUseCaseObserver(logger)
	store := service.NewSnapshotStore(progressRepo, repository.DefaultProgressKey)

	app := &cli.App{
		Sources:   service.NewSourceService(cfg.RubricDir, observer),
		Progress:  service.NewProgressService(store, logger, observer),
		Stats:     service.NewStatsService(analyticsRepo, uow, observer),
		Tracker:   tracker,
		RubricDir: cfg.RubricDir,
		Logger:    logger,
	}

	// Detect interactive terminal for the play command and prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// openDatabase opens the database at path. When that fails the session runs
// on an in-memory database, so commands keep working without saving progress.
func openDatabase(path string, logger *slog.Logger) (*sql.DB, error) {
	database, err := db.OpenDB(path)
	if err == nil {
		return database, nil
	}
	logger.Warn("database unavailable, progress will not be saved", "path", path, "error", err)
	return db.OpenDB(db.MemoryPath)
}
