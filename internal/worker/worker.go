package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/syncer"
)

// Syncer is the part of app.Session the scheduler drives.
type Syncer interface {
	Running() bool
	Sync(ctx context.Context) (*syncer.Result, error)
	Login(ctx context.Context, p domain.Profile) (*syncer.Result, error)
}

// Worker re-syncs the stored profile on a fixed interval. A non-nil
// Bootstrap profile is logged in once at Start.
type Worker struct {
	Session   Syncer
	Logger    *logger.Logger
	Interval  time.Duration
	Bootstrap *domain.Profile

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWorker(session Syncer, interval time.Duration, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		Session:  session,
		Logger:   log.WithComponent("worker"),
		Interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) Start() {
	if w.Bootstrap == nil && w.Interval <= 0 {
		w.Logger.Debug("Scheduled sync disabled")
		return
	}
	w.Logger.Info("Starting worker", "interval", w.Interval)

	w.wg.Add(1)
	go w.loop()
}

// Stop cancels any sync the worker started and waits for it to return.
func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()

	if w.Bootstrap != nil {
		w.runOnce(func(ctx context.Context) (*syncer.Result, error) {
			return w.Session.Login(ctx, *w.Bootstrap)
		})
	}
	if w.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.Session.Running() {
				w.Logger.Debug("Sync already running, skipping tick")
				continue
			}
			w.runOnce(w.Session.Sync)
		}
	}
}

func (w *Worker) runOnce(fn func(ctx context.Context) (*syncer.Result, error)) {
	res, err := fn(w.ctx)
	switch {
	case err == nil:
		w.Logger.Info("Scheduled sync complete", "run_id", res.RunID, "duration", res.Duration)
	case errors.Is(err, domain.ErrSyncInProgress):
		w.Logger.Debug("Sync already running, skipping tick")
	case errors.Is(err, domain.ErrNoProfile):
		w.Logger.Debug("No stored profile, nothing to sync")
	case errors.Is(err, context.Canceled):
	default:
		w.Logger.Warn("Scheduled sync failed", "error", err)
	}
}
