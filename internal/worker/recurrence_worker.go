package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/keonhq/taskflow/internal/application/service"
)

// RecurrenceWorker drives the periodic recurrence sweep on a cron schedule.
// The sweep is also reachable on demand through the process-recurrence
// endpoint; the worker only supplies the clockwork.
type RecurrenceWorker struct {
	recurrence *service.RecurrenceService
	schedule   string
	logger     *zap.Logger

	cron *cron.Cron
}

// NewRecurrenceWorker creates a new recurrence worker
func NewRecurrenceWorker(recurrence *service.RecurrenceService, schedule string, logger *zap.Logger) *RecurrenceWorker {
	return &RecurrenceWorker{
		recurrence: recurrence,
		schedule:   schedule,
		logger:     logger,
	}
}

// Name returns the worker name
func (w *RecurrenceWorker) Name() string {
	return "recurrence"
}

// Start validates the schedule and begins ticking
func (w *RecurrenceWorker) Start(ctx context.Context) error {
	w.cron = cron.New()

	_, err := w.cron.AddFunc(w.schedule, func() {
		w.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid recurrence schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	w.logger.Info("Recurrence worker started", zap.String("schedule", w.schedule))
	return nil
}

// Stop halts the cron scheduler and waits for a running sweep to finish
func (w *RecurrenceWorker) Stop() error {
	if w.cron == nil {
		return nil
	}
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("Recurrence worker stopped")
	return nil
}

func (w *RecurrenceWorker) sweep(ctx context.Context) {
	summary, err := w.recurrence.Run(ctx, time.Now())
	if err != nil {
		w.logger.Error("Recurrence sweep failed", zap.Error(err))
		return
	}
	w.logger.Info("Recurrence sweep finished", zap.Int("processed", summary.Processed))
}
