package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/logging"
	"github.com/robfig/cron/v3"
)

// DefaultRunTimeout bounds a single scheduled BackupAll run.
const DefaultRunTimeout = 10 * time.Minute

// Scheduler runs BackupAll on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  logging.Logger
}

// NewScheduler parses spec (standard five-field cron or a descriptor such
// as "@every 1h") and registers a BackupAll job.
func NewScheduler(svc *Service, spec string, log logging.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultRunTimeout)
		defer cancel()

		done, err := svc.BackupAll(ctx)
		if err != nil {
			log.Error(ctx, "scheduled backup finished with errors", "ok", len(done), "error", err)
			return
		}
		log.Info(ctx, "scheduled backup finished", "boards", len(done))
	})
	if err != nil {
		return nil, fmt.Errorf("backup schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	log logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(context.Background(), "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(context.Background(), "cron: "+msg, append(keysAndValues, "error", err)...)
}
