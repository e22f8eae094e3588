package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/pcfseg/internal/controllers/restserver"
	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/internal/managers"
	"github.com/chrissnell/pcfseg/internal/perarm"
	"github.com/chrissnell/pcfseg/internal/ratiofile"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
	"github.com/chrissnell/pcfseg/pkg/config"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: log.OrNop(logger),
	}
}

// BatchResult summarises a batch run.
type BatchResult struct {
	RunID    string
	Arms     int
	Segments []types.ArmSegment
}

// RunBatch segments the ratio file at input per chromosome arm and writes
// the segments to output, or to stdout when output is "" or "-". The run is
// stored when storage is configured.
func (a *App) RunBatch(ctx context.Context, input, output string) (*BatchResult, error) {
	ratios, err := ratiofile.ReadFile(input)
	if err != nil {
		return nil, err
	}

	locator, err := a.cfg.Locator()
	if err != nil {
		return nil, err
	}

	segmenter, err := perarm.NewSegmenter(ratios, locator, ratiofile.Strategy(a.cfg.Segmentation.Windowed), a.cfg.PerArm(), a.logger)
	if err != nil {
		return nil, err
	}

	exec, release, err := a.cfg.Executor()
	if err != nil {
		return nil, err
	}
	defer release()

	results, err := segmenter.GetSegmentation(ctx, exec)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	result := &BatchResult{
		Arms:     len(results),
		Segments: ratiofile.Summarise(results),
	}

	if output == "" || output == "-" {
		err = ratiofile.Write(os.Stdout, result.Segments)
	} else {
		err = ratiofile.WriteFile(output, result.Segments)
	}
	if err != nil {
		return nil, err
	}

	store, err := managers.NewStore(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer closeStore(store, a.logger)

		seg := a.cfg.Segmentation
		run := storage.NewRun(a.build(), seg.Gamma, seg.Normalise, seg.MinArmPoints, seg.Windowed, result.Segments)
		if err := store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("storing run: %w", err)
		}
		result.RunID = run.ID
	}

	a.logger.Infow("batch segmentation complete",
		"input", input,
		"executor", a.cfg.Workers.Executor,
		"arms", result.Arms,
		"segments", len(result.Segments),
		"run_id", result.RunID)

	return result, nil
}

// Serve runs the REST server and blocks until shutdown
func (a *App) Serve(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := managers.NewStore(a.cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		defer closeStore(store, a.logger)
	}

	exec, release, err := a.cfg.Executor()
	if err != nil {
		return err
	}
	defer release()

	ctrl, err := restserver.NewController(ctx, &wg, a.cfg, store, exec, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	a.logger.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}

func (a *App) build() string {
	if b, err := genome.ParseBuild(a.cfg.Genome.Build); err == nil {
		return string(b)
	}
	return a.cfg.Genome.Build
}

func closeStore(store io.Closer, logger *zap.SugaredLogger) {
	if err := store.Close(); err != nil {
		logger.Warnf("error closing run storage: %v", err)
	}
}
