// Package maintenance runs the periodic overdue report and stats warmup.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/robfig/cron/v3"
)

const runTimeout = 2 * time.Minute

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type Reporter interface {
	OverdueReport(ctx context.Context) ([]models.OverdueEntry, error)
}

type Warmer interface {
	Refresh(ctx context.Context) (models.Stats, error)
}

type Scheduler struct {
	reporter Reporter
	warmer   Warmer
	log      *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	busy    sync.Mutex
}

// New builds a scheduler. warmer may be nil.
func New(r Reporter, w Warmer, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		reporter: r,
		warmer:   w,
		log:      log.With("component", "maintenance"),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

func NextRun(spec string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Start registers the job and runs the cron loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if err := ValidateSchedule(spec); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule overdue report: %w", err)
	}
	s.cron.Start()
	s.running = true

	next, _ := NextRun(spec, time.Now())
	s.log.Info("scheduler started", "schedule", spec, "next_run", next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) tick(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, runTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("scheduled run failed", "err", err)
	}
}

// RunOnce logs the overdue report and refreshes the stats cache. Overlapping runs are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) ([]models.OverdueEntry, error) {
	if !s.busy.TryLock() {
		s.log.Warn("previous run still in progress, skipping")
		return nil, nil
	}
	defer s.busy.Unlock()

	report, err := s.reporter.OverdueReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}
	for _, e := range report {
		s.log.Info("overdue loan",
			"issue_id", e.IssueID,
			"book", e.BookTitle,
			"customer", e.CustomerName,
			"date_issued", e.DateIssued,
			"days_overdue", e.DaysOverdue,
		)
	}
	s.log.Info("overdue report done", "count", len(report))

	if s.warmer != nil {
		if _, err := s.warmer.Refresh(ctx); err != nil {
			s.log.Warn("stats warmup failed", "err", err)
		}
	}
	return report, nil
}
