package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultInputPath, cfg.Paths.Input)
	assert.Equal(t, DefaultProcessedPath, cfg.Paths.Processed)
	assert.Equal(t, DefaultReportPath, cfg.Paths.Report)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Email.Enabled)
	assert.Equal(t, DefaultSMTPPort, cfg.Email.Port)
	assert.Equal(t, DefaultSubject, cfg.Email.Subject)
	assert.Equal(t, DefaultEmailTimeout, cfg.Email.Timeout)

	// No secrets are ever defaulted.
	assert.Empty(t, cfg.Email.Server)
	assert.Empty(t, cfg.Email.Username)
	assert.Empty(t, cfg.Email.Password)
	assert.Empty(t, cfg.Email.Recipient)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
paths:
  input: in/invoices.xlsx
  processed: out/processed.xlsx
  report: out/report.xlsx
  archive_dir: archive
  archive_retention: 720h
logging:
  level: debug
email:
  enabled: true
  server: smtp.example.com
  port: 2525
  username: bot@example.com
  password: secret
  recipient: finance@example.com
  timeout: 5s
history:
  db_path: data/history.db
metrics:
  textfile: metrics/invoicer.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "in/invoices.xlsx", cfg.Paths.Input)
	assert.Equal(t, "archive", cfg.Paths.ArchiveDir)
	assert.Equal(t, 30*24*time.Hour, cfg.Paths.ArchiveRetention)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2525, cfg.Email.Port)
	assert.Equal(t, 5*time.Second, cfg.Email.Timeout)
	assert.Equal(t, "bot@example.com", cfg.Email.SenderAddress())
	assert.Equal(t, "data/history.db", cfg.History.DBPath)
	assert.Equal(t, "metrics/invoicer.prom", cfg.Metrics.Textfile)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
email:
  enabled: true
  server: smtp.example.com
  username: bot@example.com
  recipient: finance@example.com
`)
	t.Setenv("INVOICER_EMAIL_PASSWORD", "from-env")
	t.Setenv("INVOICER_PATHS_REPORT", "elsewhere/report.xlsx")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Email.Password)
	assert.Equal(t, "elsewhere/report.xlsx", cfg.Paths.Report)
}

func TestLoad_EmailEnabledRequiresExplicitSettings(t *testing.T) {
	path := writeConfig(t, `
email:
  enabled: true
  server: smtp.example.com
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
	assert.Contains(t, err.Error(), "email.Username")
	assert.Contains(t, err.Error(), "email.Recipient")
}

func TestLoad_InvalidRecipient(t *testing.T) {
	path := writeConfig(t, `
email:
  enabled: true
  server: smtp.example.com
  username: bot
  password: pw
  recipient: not-an-address
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email.Recipient")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "paths: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
}

func TestLoad_BadLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.Level")
}

func TestEmailConfig_SenderAddressPrefersFrom(t *testing.T) {
	e := EmailConfig{Username: "login", From: "reports@example.com"}
	assert.Equal(t, "reports@example.com", e.SenderAddress())
}

func TestRead_SkipsValidationUntilOverridesApplied(t *testing.T) {
	path := writeConfig(t, `
email:
  enabled: true
  server: smtp.example.com
paths:
  csv_delimiter: semicolon
  archive_by_date: true
`)

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "semicolon", cfg.Paths.CSVDelimiter)
	assert.True(t, cfg.Paths.ArchiveByDate)
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrConfig)

	cfg.Email.Enabled = false
	assert.NoError(t, cfg.Validate())
}
