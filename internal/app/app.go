// Package app wires configuration, storage, the engine and the CLI into a
// runnable editor, together with the optional metrics endpoint and backup
// schedule.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/archive"
	"github.com/dmitrijs2005/motionboard/internal/backup"
	"github.com/dmitrijs2005/motionboard/internal/cli"
	"github.com/dmitrijs2005/motionboard/internal/config"
	"github.com/dmitrijs2005/motionboard/internal/database"
	"github.com/dmitrijs2005/motionboard/internal/engine"
	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/dmitrijs2005/motionboard/internal/metrics"
	"github.com/dmitrijs2005/motionboard/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *database.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	engine   *engine.Engine
	backups  *backup.Service
	cli      *cli.App
}

// NewApp opens the store and builds every component. Logs go to logOut and
// command output to out.
func NewApp(ctx context.Context, cfg *config.Config, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := database.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	if err := m.WatchDB(store.DB, "motionboard"); err != nil {
		logger.Warn(ctx, "db stats collector not registered", "error", err)
	}

	boards := services.NewBoardService(store.DB, store.Repos, logger)
	eng := engine.New(boards, logger,
		engine.WithDebounce(cfg.SaveDebounce),
		engine.WithUndoLimit(cfg.UndoLimit),
		engine.WithMetrics(m),
	)
	codec := archive.NewCodec(boards, logger, m)

	var backups *backup.Service
	if cfg.S3Bucket != "" {
		client, err := backup.NewS3Client(ctx, backup.S3Options{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			logger.Warn(ctx, "backups disabled", "error", err)
		} else {
			backups = backup.NewService(client, cfg.S3Bucket, codec, boards, logger, m)
		}
	}

	logger.Info(ctx, "store ready", "dialect", store.Dialect)

	return &App{
		config:   cfg,
		logger:   logger,
		store:    store,
		registry: reg,
		metrics:  m,
		engine:   eng,
		backups:  backups,
		cli:      cli.NewApp(eng, boards, codec, backups, logger, out),
	}, nil
}

// Run serves the REPL on in until it ends or the process is signalled. The
// metrics endpoint and backup schedule live exactly as long as Run.
func (app *App) Run(ctx context.Context, in *os.File) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	var wg sync.WaitGroup

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, app.config.MetricsAddr, app.registry, app.logger); err != nil {
				app.logger.Error(ctx, "metrics endpoint failed", "error", err)
			}
		}()
	}

	var sched *backup.Scheduler
	if app.config.BackupsEnabled() {
		if app.backups == nil {
			app.logger.Warn(ctx, "backup schedule set but no bucket is configured")
		} else {
			s, err := backup.NewScheduler(app.backups, app.config.BackupSchedule, app.logger)
			if err != nil {
				return err
			}
			sched = s
			sched.Start()
			app.logger.Info(ctx, "backup schedule active", "schedule", app.config.BackupSchedule)
		}
	}

	done := make(chan error, 1)
	go func() { done <- app.cli.Run(ctx, in) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		app.logger.Info(ctx, "signal received, saving open board")
		runErr = app.engine.Close(context.Background())
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("stop backup schedule: %w", err))
		}
	}
	wg.Wait()
	return runErr
}

// Close releases the store.
func (app *App) Close() error {
	return app.store.Close()
}
