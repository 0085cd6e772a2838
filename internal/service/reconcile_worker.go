package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spiricx/hrlrms-sub002/internal/domain"
)

// ReconcileWorker runs the integrity check on a cron schedule.
type ReconcileWorker struct {
	reconciliation *ReconciliationService
	logger         zerolog.Logger
	cronSpec       string
	runTimeout     time.Duration
	engine         *cron.Cron

	mu      sync.Mutex
	running bool
}

// ReconcileWorkerConfig holds configuration for the scheduled integrity check.
type ReconcileWorkerConfig struct {
	CronSpec   string        // e.g. "0 2 * * *" (02:00 daily)
	RunTimeout time.Duration // deadline for one run's correction loop
}

// DefaultReconcileWorkerConfig returns sensible defaults.
func DefaultReconcileWorkerConfig() ReconcileWorkerConfig {
	return ReconcileWorkerConfig{
		CronSpec:   "0 2 * * *",
		RunTimeout: 10 * time.Minute,
	}
}

// NewReconcileWorker creates a ReconcileWorker.
func NewReconcileWorker(reconciliation *ReconciliationService, logger zerolog.Logger, config ReconcileWorkerConfig) *ReconcileWorker {
	if config.CronSpec == "" {
		config.CronSpec = "0 2 * * *"
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 10 * time.Minute
	}
	return &ReconcileWorker{
		reconciliation: reconciliation,
		logger:         logger.With().Str("component", "reconcile_worker").Logger(),
		cronSpec:       config.CronSpec,
		runTimeout:     config.RunTimeout,
		engine:         cron.New(),
	}
}

// Start registers the cron job and begins scheduling.
func (w *ReconcileWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if _, err := w.engine.AddFunc(w.cronSpec, w.runOnce); err != nil {
		return err
	}
	w.engine.Start()
	w.running = true

	w.logger.Info().Str("cron", w.cronSpec).Msg("Starting reconciliation worker")
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reconciliation worker")
	ctx := w.engine.Stop()
	<-ctx.Done()
	w.logger.Info().Msg("Reconciliation worker stopped")
}

// IsRunning returns whether the worker is scheduled.
func (w *ReconcileWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReconcileWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.runTimeout)
	defer cancel()

	start := time.Now()
	report, err := w.reconciliation.RunIntegrityCheck(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrReconciliationRunning) {
			w.logger.Warn().Msg("Skipping scheduled run, another run is in progress")
			return
		}
		w.logger.Error().Err(err).Msg("Scheduled integrity check failed")
		return
	}

	w.logger.Info().
		Str("report_id", report.ID.String()).
		Int("loans_checked", report.LoansChecked).
		Int("discrepancies", report.DiscrepancyCount).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled integrity check completed")
}
