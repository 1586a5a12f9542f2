// =============================================================================
// Invoice Report Automation - Pipeline
// =============================================================================
//
// This module runs the invoice batch from start to finish:
//
//   | Step | Stage            | On failure                        |
//   |------|------------------|-----------------------------------|
//   | 1    | load             | stop, run failed                  |
//   | 2    | normalize        | stop, run failed                  |
//   | 3    | write_processed  | stop, run failed                  |
//   | 4    | report           | stop, run failed                  |
//   | 5    | notify           | logged, run still succeeds        |
//   | 6    | archive          | logged, run still succeeds        |
//   | 7    | history/metrics  | logged, run still succeeds        |
//
// Steps 5 to 7 run only when they are configured. The history and metrics
// step also runs after a failed run so that failures are recorded.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	"github.com/ginjaninja78/invoice-report-automation/internal/converter"
	"github.com/ginjaninja78/invoice-report-automation/internal/csvparser"
	"github.com/ginjaninja78/invoice-report-automation/internal/history"
	"github.com/ginjaninja78/invoice-report-automation/internal/logger"
	"github.com/ginjaninja78/invoice-report-automation/internal/metrics"
	"github.com/ginjaninja78/invoice-report-automation/internal/notifier"
	"github.com/ginjaninja78/invoice-report-automation/internal/report"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxparser"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxwriter"
	"github.com/ginjaninja78/invoice-report-automation/pkg/utils"
)

// Stage names a pipeline step.
type Stage string

const (
	StageLoad           Stage = "load"
	StageNormalize      Stage = "normalize"
	StageWriteProcessed Stage = "write_processed"
	StageReport         Stage = "report"
	StageNotify         Stage = "notify"
	StageArchive        Stage = "archive"
	StageHistory        Stage = "history"
	StageMetrics        Stage = "metrics"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Notifier sends the report. *notifier.Notifier satisfies it.
type Notifier interface {
	Send(ctx context.Context, reportPath string) (notifier.Result, error)
}

// Recorder stores run outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Step is reported to the progress callback after every step that ran.
type Step struct {
	Stage  Stage
	OK     bool
	Detail string
	Err    error
}

// Result is the outcome of one run.
type Result struct {
	RunID string

	// Success is true when processing and reporting completed. Email,
	// archive, history and metrics failures do not change it.
	Success bool

	// Stage and Err describe the fatal failure when Success is false.
	Stage Stage
	Err   error

	EmailSent bool
	EmailErr  error
	Attached  bool

	Records      int
	Stats        report.Stats
	ArchivedPath string

	StartedAt time.Time
	Duration  time.Duration
}

// Pipeline runs the batch with one configuration.
type Pipeline struct {
	cfg      *config.Config
	log      *logger.Logger
	clock    func() time.Time
	notifier Notifier
	recorder Recorder
	metrics  *metrics.Registry
	progress func(Step)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for DaysOld, the report timestamp and run
// timings.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithNotifier replaces the notifier built from the email configuration.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithRecorder replaces the history store opened from history.db_path.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithMetrics sets the registry observed after each run.
func WithMetrics(r *metrics.Registry) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// WithProgress registers a callback invoked after each step.
func WithProgress(fn func(Step)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		log:      logger.Nop(),
		clock:    time.Now,
		progress: func(Step) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil && cfg.Email.Enabled {
		p.notifier = notifier.New(cfg.Email, notifier.WithLogger(p.log))
	}
	return p
}

// =============================================================================
// RUN
// =============================================================================

// Run executes every step. It never panics on bad input; the outcome is in
// the returned Result.
func (p *Pipeline) Run(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString(), StartedAt: p.clock()}
	log := p.log.With("run_id", res.RunID)

	log.Info("pipeline started", "input", p.cfg.Paths.Input)

	p.process(log, &res)

	if res.Success {
		p.notify(ctx, log, &res)
		p.archive(log, &res)
	}

	res.Duration = p.clock().Sub(res.StartedAt)
	p.record(ctx, log, &res)

	if res.Success {
		log.Info("pipeline finished",
			"records", res.Records, "total", res.Stats.Total.StringFixed(2),
			"email_sent", res.EmailSent, "duration", res.Duration)
	} else {
		log.Error("pipeline failed", "stage", res.Stage, "error", res.Err)
	}
	return res
}

// process runs the fatal steps 1 to 4.
func (p *Pipeline) process(log *logger.Logger, res *Result) {
	fail := func(stage Stage, err error) {
		res.Stage = stage
		res.Err = err
		p.progress(Step{Stage: stage, Err: err})
	}

	// STEP 1: LOAD
	table, err := xlsxparser.Load(p.cfg.Paths.Input, xlsxparser.LoadOptions{
		Sheet: p.cfg.Paths.InputSheet,
		CSV:   csvparser.Settings{Delimiter: p.cfg.Paths.CSVDelimiter},
	})
	if err != nil {
		fail(StageLoad, fmt.Errorf("failed to load %s: %w", p.cfg.Paths.Input, err))
		return
	}
	log.Debug("input loaded", "rows", table.Len(), "columns", table.Columns)
	p.progress(Step{Stage: StageLoad, OK: true, Detail: fmt.Sprintf("%d invoice(s) from %s", table.Len(), p.cfg.Paths.Input)})

	// STEP 2: NORMALIZE
	processed, err := converter.Normalize(table, p.clock())
	if err != nil {
		fail(StageNormalize, err)
		return
	}
	p.progress(Step{Stage: StageNormalize, OK: true, Detail: fmt.Sprintf("%d invoice(s) normalized", processed.Len())})

	// STEP 3: WRITE PROCESSED
	if err := xlsxwriter.Write(p.cfg.Paths.Processed, processed); err != nil {
		fail(StageWriteProcessed, err)
		return
	}
	p.progress(Step{Stage: StageWriteProcessed, OK: true, Detail: p.cfg.Paths.Processed})

	// STEP 4: REPORT
	artifact, err := WriteReport(processed, p.cfg.Paths.Report, p.clock())
	if err != nil {
		fail(StageReport, err)
		return
	}
	p.progress(Step{Stage: StageReport, OK: true, Detail: p.cfg.Paths.Report})

	res.Success = true
	res.Records = processed.Len()
	res.Stats = artifact.Stats
}

// notify runs step 5.
func (p *Pipeline) notify(ctx context.Context, log *logger.Logger, res *Result) {
	if !p.cfg.Email.Enabled || p.notifier == nil {
		log.Debug("email disabled, skipping notification")
		return
	}

	sent, err := p.notifier.Send(ctx, p.cfg.Paths.Report)
	if err != nil {
		res.EmailErr = err
		log.Error("failed to send report email", "error", err)
		p.progress(Step{Stage: StageNotify, Err: err})
		return
	}

	res.EmailSent = true
	res.Attached = sent.Attached
	detail := "report sent to " + sent.Recipient
	if !sent.Attached {
		detail += " (without attachment)"
	}
	p.progress(Step{Stage: StageNotify, OK: true, Detail: detail})
}

// archive runs step 6.
func (p *Pipeline) archive(log *logger.Logger, res *Result) {
	if p.cfg.Paths.ArchiveDir == "" {
		return
	}

	fm := utils.NewFileManager(p.cfg.Paths.ArchiveDir).WithClock(p.clock)
	fm.UseTimestampSubdirs = p.cfg.Paths.ArchiveByDate
	archived, err := fm.ArchiveFile(p.cfg.Paths.Input)
	if err != nil {
		log.Warn("failed to archive input", "error", err)
		p.progress(Step{Stage: StageArchive, Err: err})
		return
	}
	res.ArchivedPath = archived
	p.progress(Step{Stage: StageArchive, OK: true, Detail: archived})

	if p.cfg.Paths.ArchiveRetention > 0 {
		removed, err := utils.CleanOldArchives(p.cfg.Paths.ArchiveDir, p.cfg.Paths.ArchiveRetention, p.clock())
		if err != nil {
			log.Warn("failed to clean old archives", "error", err)
			return
		}
		if removed > 0 {
			log.Info("old archives removed", "count", removed)
		}
	}
}

// record runs step 7.
func (p *Pipeline) record(ctx context.Context, log *logger.Logger, res *Result) {
	finished := res.StartedAt.Add(res.Duration)

	recorder := p.recorder
	if recorder == nil && p.cfg.History.DBPath != "" {
		store, err := history.Open(p.cfg.History.DBPath)
		if err != nil {
			log.Warn("failed to open run history", "error", err)
			p.progress(Step{Stage: StageHistory, Err: err})
		} else {
			defer store.Close()
			recorder = store
		}
	}
	if recorder != nil {
		if err := recorder.Record(ctx, historyRun(res, finished)); err != nil {
			log.Warn("failed to record run", "error", err)
			p.progress(Step{Stage: StageHistory, Err: err})
		}
	}

	if p.cfg.Metrics.Textfile == "" {
		return
	}
	reg := p.metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	reg.Observe(metrics.Observation{
		Success:   res.Success,
		Finished:  finished,
		Duration:  res.Duration,
		Records:   res.Records,
		Total:     res.Stats.Total,
		EmailSent: res.EmailSent,
	})
	if err := reg.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		log.Warn("failed to write metrics", "error", err)
		p.progress(Step{Stage: StageMetrics, Err: err})
	}
}

func historyRun(res *Result, finished time.Time) history.Run {
	run := history.Run{
		ID:          res.RunID,
		StartedAt:   res.StartedAt,
		FinishedAt:  finished,
		Status:      history.StatusSuccess,
		Records:     res.Records,
		TotalAmount: res.Stats.Total,
		EmailSent:   res.EmailSent,
	}
	if !res.Success {
		run.Status = history.StatusFailed
		run.Stage = string(res.Stage)
		if res.Err != nil {
			run.Error = res.Err.Error()
		}
	}
	return run
}

// =============================================================================
// REPORT STEP
// =============================================================================

// WriteReport builds the report from a processed table and saves it.
func WriteReport(processed types.Table, path string, now time.Time) (*report.Artifact, error) {
	artifact, err := report.Build(processed, now)
	if err != nil {
		return nil, err
	}
	if err := xlsxwriter.WriteSheets(path, artifact.Sheets()...); err != nil {
		return nil, err
	}
	return artifact, nil
}
