package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/history"
	"github.com/ginjaninja78/invoice-report-automation/internal/notifier"
	"github.com/ginjaninja78/invoice-report-automation/internal/report"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxparser"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxwriter"
	"github.com/ginjaninja78/invoice-report-automation/pkg/utils"
)

var runTime = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return runTime }

type fakeNotifier struct {
	calls int
	path  string
	err   error
}

func (f *fakeNotifier) Send(_ context.Context, reportPath string) (notifier.Result, error) {
	f.calls++
	f.path = reportPath
	if f.err != nil {
		return notifier.Result{}, f.err
	}
	return notifier.Result{Recipient: "finance@example.com", Attached: utils.FileExists(reportPath)}, nil
}

type fakeRecorder struct {
	runs []history.Run
}

func (f *fakeRecorder) Record(_ context.Context, run history.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

// testConfig points every path into a temp dir and writes the sample input.
func testConfig(t *testing.T, writeInput bool) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.Input = filepath.Join(dir, "data", "invoice_data.xlsx")
	cfg.Paths.Processed = filepath.Join(dir, "data", "processed_invoice_data.xlsx")
	cfg.Paths.Report = filepath.Join(dir, "data", "report.xlsx")

	if writeInput {
		in := types.NewTable(types.InputColumns...)
		in.AppendRow("INV001", "acme corp", "1000.50", "paid", "2025-01-01")
		in.AppendRow("INV002", "demo inc", "2500.75", "pending", "2025-01-15")
		in.AppendRow("INV003", "sample llc", "750.25", "overdue", "2025-01-30")
		require.NoError(t, xlsxwriter.Write(cfg.Paths.Input, in))
	}
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Email.Enabled = true
	fake := &fakeNotifier{}

	var steps []Step
	res := New(cfg,
		WithClock(fixedClock),
		WithNotifier(fake),
		WithProgress(func(s Step) { steps = append(steps, s) }),
	).Run(context.Background())

	require.True(t, res.Success, "%v", res.Err)
	assert.Empty(t, res.Stage)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, "4251.5", res.Stats.Total.String())
	assert.True(t, res.EmailSent)
	assert.True(t, res.Attached)
	assert.Equal(t, cfg.Paths.Report, fake.path)

	var stages []Stage
	for _, s := range steps {
		assert.True(t, s.OK, s.Stage)
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []Stage{StageLoad, StageNormalize, StageWriteProcessed, StageReport, StageNotify}, stages)

	processed, err := xlsxparser.Load(cfg.Paths.Processed, xlsxparser.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"InvoiceID", "Client", "Amount", "Status", "Date", "DaysOld"}, processed.Columns)
	assert.Equal(t, []string{"Acme Corp", "Demo Inc", "Sample Llc"}, processed.Column(types.ColumnClient))
	assert.Equal(t, []string{"PAID", "PENDING", "OVERDUE"}, processed.Column(types.ColumnStatus))
	assert.Equal(t, []string{"31", "17", "2"}, processed.Column(types.ColumnDaysOld))

	sheets, err := xlsxparser.LoadSheets(cfg.Paths.Report)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, report.SheetInvoiceData, sheets[0].Name)
	assert.Equal(t, processed.Len(), sheets[0].Table.Len())
	assert.Equal(t, report.SheetSummary, sheets[1].Name)
	assert.Equal(t, []string{
		"Report Generated: 2025-02-01 09:30:00",
		"Total Invoices: 3",
		"Total Amount: $4,251.50",
		"Average Amount: $1,417.17",
	}, sheets[1].Table.Column(report.SummaryHeader))
}

func TestRun_MissingInputFailsAtLoad(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Email.Enabled = true
	fake := &fakeNotifier{}
	rec := &fakeRecorder{}

	res := New(cfg, WithClock(fixedClock), WithNotifier(fake), WithRecorder(rec)).Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, StageLoad, res.Stage)
	assert.ErrorIs(t, res.Err, apperrors.ErrFileNotFound)
	assert.False(t, utils.FileExists(cfg.Paths.Processed))
	assert.False(t, utils.FileExists(cfg.Paths.Report))
	assert.Zero(t, fake.calls)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, history.StatusFailed, rec.runs[0].Status)
	assert.Equal(t, "load", rec.runs[0].Stage)
	assert.NotEmpty(t, rec.runs[0].Error)
}

func TestRun_InvalidDateFailsAtNormalize(t *testing.T) {
	cfg := testConfig(t, false)
	in := types.NewTable(types.InputColumns...)
	in.AppendRow("INV001", "acme", "1", "paid", "yesterday")
	require.NoError(t, xlsxwriter.Write(cfg.Paths.Input, in))

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, StageNormalize, res.Stage)
	assert.ErrorIs(t, res.Err, apperrors.ErrInvalidDate)
	assert.False(t, utils.FileExists(cfg.Paths.Processed))
}

func TestRun_MissingColumnFailsAtNormalize(t *testing.T) {
	cfg := testConfig(t, false)
	in := types.NewTable("InvoiceID", "Client", "Amount", "Date")
	in.AppendRow("INV001", "acme", "1", "2025-01-01")
	require.NoError(t, xlsxwriter.Write(cfg.Paths.Input, in))

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())

	assert.Equal(t, StageNormalize, res.Stage)
	assert.ErrorIs(t, res.Err, apperrors.ErrMissingColumn)
}

func TestRun_EmailFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Email.Enabled = true
	sendErr := apperrors.New(apperrors.KindAuth, "notify", errors.New("535 bad credentials"))
	fake := &fakeNotifier{err: sendErr}

	res := New(cfg, WithClock(fixedClock), WithNotifier(fake)).Run(context.Background())

	assert.True(t, res.Success)
	assert.False(t, res.EmailSent)
	assert.ErrorIs(t, res.EmailErr, apperrors.ErrAuth)
	assert.Equal(t, 1, fake.calls)
	assert.True(t, utils.FileExists(cfg.Paths.Report))
}

func TestRun_EmailDisabledSkipsNotifier(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Email.Enabled = false
	fake := &fakeNotifier{}

	res := New(cfg, WithClock(fixedClock), WithNotifier(fake)).Run(context.Background())

	assert.True(t, res.Success)
	assert.Zero(t, fake.calls)
	assert.False(t, res.EmailSent)
}

func TestRun_EmptyInputProducesZeroAverage(t *testing.T) {
	cfg := testConfig(t, false)
	require.NoError(t, xlsxwriter.Write(cfg.Paths.Input, types.NewTable(types.InputColumns...)))

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())
	require.True(t, res.Success, "%v", res.Err)

	sheets, err := xlsxparser.LoadSheets(cfg.Paths.Report)
	require.NoError(t, err)
	assert.Contains(t, sheets[1].Table.Column(report.SummaryHeader), "Average Amount: $0.00")
}

func TestRun_HistoryMetricsAndArchive(t *testing.T) {
	cfg := testConfig(t, true)
	base := filepath.Dir(cfg.Paths.Input)
	cfg.History.DBPath = filepath.Join(base, "history.db")
	cfg.Metrics.Textfile = filepath.Join(base, "metrics", "invoicer.prom")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.ArchiveRetention = 24 * time.Hour

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())
	require.True(t, res.Success, "%v", res.Err)

	require.NotEmpty(t, res.ArchivedPath)
	assert.True(t, utils.FileExists(res.ArchivedPath))
	assert.True(t, utils.FileExists(cfg.Paths.Input))

	store, err := history.Open(cfg.History.DBPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, history.StatusSuccess, runs[0].Status)
	assert.Equal(t, 3, runs[0].Records)

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "invoicer_last_run_success 1")
	assert.Contains(t, string(prom), "invoicer_invoices_processed 3")
}

func TestWriteReport(t *testing.T) {
	processed := types.NewTable("Amount")
	processed.AppendRow("5.00")
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")

	artifact, err := WriteReport(processed, path, runTime)
	require.NoError(t, err)
	assert.Equal(t, 1, artifact.Stats.Count)
	assert.True(t, utils.FileExists(path))

	_, err = WriteReport(types.NewTable("Client"), filepath.Join(t.TempDir(), "r.xlsx"), runTime)
	assert.ErrorIs(t, err, apperrors.ErrMissingColumn)
}

func TestWriteSample_RunsThroughPipeline(t *testing.T) {
	cfg := testConfig(t, false)
	require.NoError(t, WriteSample(cfg.Paths.Input))

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())
	require.True(t, res.Success, "%v", res.Err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, "$1,417.17", report.FormatCurrency(res.Stats.Average))
}

func TestRun_SemicolonCSVInputArchivedByDate(t *testing.T) {
	cfg := testConfig(t, false)
	base := filepath.Dir(cfg.Paths.Input)
	cfg.Paths.Input = filepath.Join(base, "invoice_data.csv")
	cfg.Paths.CSVDelimiter = "semicolon"
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.ArchiveByDate = true

	require.NoError(t, os.MkdirAll(base, 0o755))
	csv := "InvoiceID;Client;Amount;Status;Date\n" +
		"INV001;acme corp;1000.50;paid;2025-01-01\n" +
		"INV002;demo inc;2500.75;pending;2025-01-15\n"
	require.NoError(t, os.WriteFile(cfg.Paths.Input, []byte(csv), 0o644))

	res := New(cfg, WithClock(fixedClock)).Run(context.Background())
	require.True(t, res.Success, "%v", res.Err)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, "3501.25", res.Stats.Total.String())

	require.NotEmpty(t, res.ArchivedPath)
	assert.Equal(t, filepath.Join(cfg.Paths.ArchiveDir, "2025", "02", "01"), filepath.Dir(res.ArchivedPath))
	assert.Equal(t, ".csv", filepath.Ext(res.ArchivedPath))
}
