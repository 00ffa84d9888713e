package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/config"
	"github.com/mamadbah2/flockbook/internal/service/reporting"
	"github.com/mamadbah2/flockbook/pkg/clients/notify"
)

const summaryTitle = "Daily flock summary"

// Reporter produces dashboard statistics and their text rendering.
type Reporter interface {
	DashboardBetween(start, end time.Time) reporting.Dashboard
	Summary(d reporting.Dashboard) string
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	notifier notify.Notifier
	schedule string
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reporter Reporter, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field parser: min, hour, dom, month, dow.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		reporter: reporter,
		notifier: notifier,
		schedule: cfg.CronSchedule,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the daily summary job and starts the cron engine.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDailySummary); err != nil {
		return fmt.Errorf("schedule daily summary: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunNow builds today's summary and sends it. "Today" is the calendar day in
// the configured timezone; report dates are calendar days stored at UTC
// midnight, so the window spans that day in UTC.
func (s *Scheduler) RunNow(ctx context.Context) error {
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	dashboard := s.reporter.DashboardBetween(start, end)
	msg := notify.Message{
		Title:  summaryTitle,
		Text:   s.reporter.Summary(dashboard),
		SentAt: now.UTC(),
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send daily summary: %w", err)
	}
	return nil
}

func (s *Scheduler) sendDailySummary() {
	s.logger.Info("generating daily summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunNow(ctx); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
		return
	}
	s.logger.Info("daily summary sent successfully")
}
