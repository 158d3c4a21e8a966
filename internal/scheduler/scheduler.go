// Package scheduler orchestrates check runs: one full cycle loads the
// previous snapshot, fans out fetches across all organizations, annotates
// changes, persists the new snapshot and history entry, and notifies sinks.
// A single-flight guard ensures at most one run executes at a time; the
// periodic trigger is a cron schedule with a fixed timezone.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/config"
	"github.com/nathannam/aau-tryouts/internal/logger"
	"github.com/nathannam/aau-tryouts/internal/notifier"
	"github.com/nathannam/aau-tryouts/internal/scraper"
	"github.com/nathannam/aau-tryouts/internal/storage"
)

// RunResult reports the outcome of one check run.
type RunResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ChangesCount int    `json:"changesCount"`
}

// Status reports the scheduler's in-memory state. Running means a run is
// currently in flight, whether triggered manually or on schedule.
type Status struct {
	Enabled  bool   `json:"enabled"`
	Running  bool   `json:"running"`
	Schedule string `json:"schedule"`
}

// Scheduler runs check cycles, either on demand or on a cron schedule.
type Scheduler struct {
	cfg       *config.Config
	scraper   *scraper.Scraper
	store     *storage.Store
	notifiers []notifier.Notifier
	log       *logger.Logger

	// running is the single-flight guard: at most one run at a time,
	// shared by the manual trigger and the periodic trigger.
	running atomic.Bool

	cron *cron.Cron
}

// New creates a Scheduler. Notifiers are invoked after any run that detected
// changes; their failures are logged, never fatal.
func New(cfg *config.Config, sc *scraper.Scraper, store *storage.Store, log *logger.Logger, notifiers ...notifier.Notifier) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		scraper:   sc,
		store:     store,
		notifiers: notifiers,
		log:       log,
	}
}

// ExecuteRun performs one full check cycle. If a run is already in flight it
// returns immediately with a "job already running" result; there is no
// queuing. The running flag is released on every exit path.
func (s *Scheduler) ExecuteRun(ctx context.Context) (result RunResult) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info("Job already running, skipping", nil)
		return RunResult{Success: false, Message: "Job already running", ChangesCount: 0}
	}
	defer s.running.Store(false)

	// Anything unexpected from a dependency resolves to a failed result
	// rather than escaping to the caller.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Run failed unexpectedly", logger.Fields{"panic": fmt.Sprint(r)}, nil)
			result = RunResult{Success: false, Message: fmt.Sprintf("unexpected failure: %v", r), ChangesCount: 0}
		}
	}()

	start := time.Now()
	s.log.Info("Starting check run", logger.Fields{
		"organizations": len(s.cfg.Organizations),
	})
	logger.IncrCounter("scheduler.runs")

	previous := s.store.LoadPrevious()
	s.log.Debug("Loaded previous results", logger.Fields{"count": len(previous)})

	current := s.scraper.CheckAll(ctx, s.cfg.Organizations)
	annotated := check.Annotate(current, previous)
	changes := check.CountChanged(annotated)

	// Both writes are always attempted; persistence failure is logged but
	// does not fail the run. The next run simply diffs against an older
	// snapshot.
	if err := s.store.SaveResults(annotated); err != nil {
		s.log.Error("Failed to save results", nil, err)
	}
	if err := s.store.AppendHistory(annotated); err != nil {
		s.log.Error("Failed to append history", nil, err)
	}

	if changes > 0 {
		changed := check.ChangedResults(annotated)
		for _, n := range s.notifiers {
			if err := n.Notify(ctx, changed); err != nil {
				s.log.Error("Notifier failed", nil, err)
			}
		}
	} else {
		s.log.Info("No changes detected", nil)
	}

	logger.SetGauge("scheduler.last_changes", float64(changes))
	logger.RecordTiming("scheduler.run", time.Since(start))

	s.log.Info("Check run completed", logger.Fields{
		"organizations": len(annotated),
		"changes":       changes,
		"duration":      time.Since(start).String(),
	})

	return RunResult{
		Success:      true,
		Message:      fmt.Sprintf("Checked %d websites. %d changes detected.", len(annotated), changes),
		ChangesCount: changes,
	}
}

// Start begins periodic triggering when enabled for the current deployment
// mode, performing one run immediately before the first scheduled tick.
// Start is a no-op when triggering is disabled or already started.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.IsEnabled() {
		s.log.Info("Scheduler is disabled", logger.Fields{
			"hint": "set scheduler.enabled or APP_ENV=production",
		})
		return nil
	}
	if s.cron != nil {
		return nil
	}

	loc, err := time.LoadLocation(s.cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", s.cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(s.cfg.Scheduler.Schedule, func() {
		s.ExecuteRun(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Scheduler.Schedule, err)
	}

	c.Start()
	s.cron = c

	s.log.Info("Scheduler started", logger.Fields{
		"schedule": s.cfg.Scheduler.Schedule,
		"timezone": s.cfg.Scheduler.Timezone,
	})

	// Run once immediately on startup
	s.log.Info("Running initial check", nil)
	s.ExecuteRun(ctx)

	return nil
}

// Stop halts periodic triggering. An in-flight run is not interrupted.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
		s.log.Info("Scheduler stopped", nil)
	}
}

// GetStatus reports whether periodic triggering is enabled and whether a run
// is currently in flight. Purely a read of in-memory state.
func (s *Scheduler) GetStatus() Status {
	return Status{
		Enabled:  s.cfg.Scheduler.IsEnabled(),
		Running:  s.running.Load(),
		Schedule: s.cfg.Scheduler.Schedule,
	}
}
