package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"BandSentinel/internal/logger"
	"BandSentinel/internal/metrics"
	"BandSentinel/internal/model"
	"BandSentinel/internal/notifier"
	"BandSentinel/internal/pipeline"
	"BandSentinel/internal/recorder"
)

// Scheduler runs backtest passes, either once or on a cron schedule, and fans each
// run out to the report writer, the recorder, the metrics textfile and Telegram.
type Scheduler struct {
	Cron        *cron.Cron
	Pipeline    *pipeline.Pipeline
	Tickers     []string
	Out         io.Writer
	Format      string // text or json
	Notifier    *notifier.TelegramNotifier
	Recorder    recorder.Recorder
	MetricsPath string
	Ctx         context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler. tn may be nil to disable Telegram.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, tickers []string, out io.Writer, format string,
	tn *notifier.TelegramNotifier, rec recorder.Recorder, metricsPath string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Pipeline:    p,
		Tickers:     tickers,
		Out:         out,
		Format:      format,
		Notifier:    tn,
		Recorder:    rec,
		MetricsPath: metricsPath,
		Ctx:         ctx,
	}
}

// Register schedules a full run on spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runTask() {
	if _, err := s.RunNow(); err != nil {
		logger.Error().Err(err).Msg("scheduled run")
	}
}

// RunNow executes one pass immediately. Overlapping passes are serialized. The returned
// error covers the report writer only; recorder, metrics and Telegram failures are logged.
func (s *Scheduler) RunNow() (*model.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.Pipeline.Run(s.Ctx, s.Tickers)

	var err error
	if s.Format == "json" {
		err = notifier.WriteJSON(s.Out, run.Results)
	} else {
		err = notifier.WriteText(s.Out, run.Results)
	}
	if err != nil {
		err = fmt.Errorf("write report: %w", err)
	}

	if recErr := s.Recorder.RecordRun(run); recErr != nil {
		logger.Error().Err(recErr).Str("run_id", run.ID).Msg("record run")
	}
	s.writeMetrics(run)
	s.trySend(notifier.FormatRunSummary(run))
	return run, err
}

func (s *Scheduler) writeMetrics(run *model.RunSummary) {
	if s.MetricsPath == "" {
		return
	}
	m := metrics.NewRun()
	for i := range run.Results {
		m.ObserveResult(&run.Results[i])
	}
	m.ObserveDuration(run.FinishedAt.Sub(run.StartedAt))
	if err := m.WriteTextfile(s.MetricsPath); err != nil {
		logger.Error().Err(err).Str("path", s.MetricsPath).Msg("write metrics textfile")
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Minute)
	defer cancel()
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		logger.Error().Err(err).Msg("send notification")
	}
}
