package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

type SessionRefresher interface {
	Refresh(ctx context.Context)
}

type RolloverJob struct {
	Day string
}

// RolloverWorker resets in-memory completion state at local midnight, so a
// long-running process does not report yesterday's completions.
type RolloverWorker struct {
	refresher SessionRefresher
	clock     domain.Clock
	interval  time.Duration
	logger    *zap.Logger
	jobs      chan RolloverJob

	lastDay string
}

func NewRolloverWorker(refresher SessionRefresher, clock domain.Clock, interval time.Duration, logger *zap.Logger) *RolloverWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &RolloverWorker{
		refresher: refresher,
		clock:     clock,
		interval:  interval,
		logger:    logger.With(zap.String("component", "rollover_worker")),
		jobs:      make(chan RolloverJob, 8),
	}
}

func (w *RolloverWorker) Start(ctx context.Context) {
	w.lastDay = w.clock.Today()

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("rollover worker started", zap.String("day", w.lastDay))
		for {
			select {
			case <-ticker.C:
				w.Tick()
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("rollover worker shutting down")
				return
			}
		}
	}()
}

// Tick compares the clock with the last seen day and enqueues a refresh when
// the day changed. Only the worker goroutine (or a test driving it) calls Tick.
func (w *RolloverWorker) Tick() {
	today := w.clock.Today()
	if today == w.lastDay {
		return
	}
	w.lastDay = today
	w.Enqueue(today)
}

func (w *RolloverWorker) Enqueue(day string) {
	select {
	case w.jobs <- RolloverJob{Day: day}:
	default:
		w.logger.Warn("rollover queue full, dropping job", zap.String("day", day))
	}
}

func (w *RolloverWorker) processJob(ctx context.Context, job RolloverJob) {
	w.logger.Info("day changed, refreshing session", zap.String("day", job.Day))
	w.refresher.Refresh(ctx)
}
