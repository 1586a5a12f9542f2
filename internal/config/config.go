// =============================================================================
// Invoice Report Automation - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. config.yaml (optional): file paths, logging, email, history, metrics
//   2. Environment variables prefixed with INVOICER_
//      e.g. INVOICER_EMAIL_PASSWORD, INVOICER_PATHS_INPUT
//   3. Built-in defaults for anything still unset
//
// SECRETS:
//   There are no built-in SMTP server, account or password values. When email
//   is enabled the server, username, password and recipient must be supplied
//   by the file or the environment, otherwise loading fails.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "INVOICER"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete application configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Email   EmailConfig   `yaml:"email" envconfig:"EMAIL"`
	History HistoryConfig `yaml:"history" envconfig:"HISTORY"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
}

// PathsConfig holds the files read and written by the pipeline.
type PathsConfig struct {
	// Input is the source invoice spreadsheet (.xlsx or .csv).
	// Default: "data/invoice_data.xlsx"
	Input string `yaml:"input" envconfig:"INPUT" validate:"required"`

	// InputSheet selects the sheet to read. Empty means the first sheet.
	InputSheet string `yaml:"input_sheet" envconfig:"INPUT_SHEET"`

	// CSVDelimiter is the field separator used when Input is a .csv file.
	// A single character or one of "tab", "pipe", "semicolon".
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter" envconfig:"CSV_DELIMITER"`

	// Processed is where the normalized table is written.
	// Default: "data/processed_invoice_data.xlsx"
	Processed string `yaml:"processed" envconfig:"PROCESSED" validate:"required"`

	// Report is where the two-sheet report is written.
	// Default: "data/report.xlsx"
	Report string `yaml:"report" envconfig:"REPORT" validate:"required"`

	// ArchiveDir, if set, receives a copy of the input file after a
	// successful run. Leave empty to disable archival.
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR"`

	// ArchiveByDate groups archived copies as <archive_dir>/YYYY/MM/DD.
	ArchiveByDate bool `yaml:"archive_by_date" envconfig:"ARCHIVE_BY_DATE"`

	// ArchiveRetention removes archived copies older than this after each
	// archival. Zero keeps everything.
	ArchiveRetention time.Duration `yaml:"archive_retention" envconfig:"ARCHIVE_RETENTION" validate:"min=0"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`

	// File, if set, receives a JSON copy of every log record.
	File string `yaml:"file" envconfig:"FILE"`
}

// EmailConfig holds the SMTP settings used to send the report.
type EmailConfig struct {
	// Enabled turns the notification stage on.
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// Server is the SMTP host name.
	Server string `yaml:"server" envconfig:"SERVER" validate:"required,hostname|ip"`

	// Port is the SMTP submission port. STARTTLS is always required.
	// Default: 587
	Port int `yaml:"port" envconfig:"PORT" validate:"required,min=1,max=65535"`

	// Username is the SMTP login.
	Username string `yaml:"username" envconfig:"USERNAME" validate:"required"`

	// Password is the SMTP password. Prefer INVOICER_EMAIL_PASSWORD over the file.
	Password string `yaml:"password" envconfig:"PASSWORD" validate:"required"`

	// From is the sender address. Defaults to Username when empty.
	From string `yaml:"from" envconfig:"FROM" validate:"omitempty,email"`

	// Recipient is the destination address.
	Recipient string `yaml:"recipient" envconfig:"RECIPIENT" validate:"required,email"`

	// Subject of the notification.
	// Default: "Invoice Processing Report"
	Subject string `yaml:"subject" envconfig:"SUBJECT"`

	// Body is the plain-text message body.
	Body string `yaml:"body" envconfig:"BODY"`

	// Timeout bounds the whole SMTP session.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"min=0"`
}

// HistoryConfig controls the SQLite run ledger.
type HistoryConfig struct {
	// DBPath is the SQLite database file. Empty disables run history.
	DBPath string `yaml:"db_path" envconfig:"DB_PATH"`
}

// MetricsConfig controls the Prometheus textfile output.
type MetricsConfig struct {
	// Textfile is the .prom file written after each run. Empty disables it.
	Textfile string `yaml:"textfile" envconfig:"TEXTFILE"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultInputPath     = "data/invoice_data.xlsx"
	DefaultProcessedPath = "data/processed_invoice_data.xlsx"
	DefaultReportPath    = "data/report.xlsx"
	DefaultSubject       = "Invoice Processing Report"
	DefaultSMTPPort      = 587
	DefaultEmailTimeout  = 30 * time.Second
)

// DefaultBody is the plain-text body sent with the report.
const DefaultBody = `Hello,

Please find attached the invoice processing report.

Best regards,
Automation System
`

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Paths.Input == "" {
		cfg.Paths.Input = DefaultInputPath
	}
	if cfg.Paths.Processed == "" {
		cfg.Paths.Processed = DefaultProcessedPath
	}
	if cfg.Paths.Report == "" {
		cfg.Paths.Report = DefaultReportPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = DefaultSMTPPort
	}
	if cfg.Email.Subject == "" {
		cfg.Email.Subject = DefaultSubject
	}
	if cfg.Email.Body == "" {
		cfg.Email.Body = DefaultBody
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = DefaultEmailTimeout
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates the configuration.
//
// PARAMETERS:
//   - configPath: path to a YAML file, or "" to use only the environment
//     and defaults.
//
// RETURNS:
//   - The loaded configuration.
//   - A KindFileNotFound error if configPath does not exist, or a KindConfig
//     error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. Callers that adjust the result, such as
// command-line overrides, must call Validate afterwards.
func Read(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, apperrors.New(apperrors.KindFileNotFound, "load config", err)
			}
			return nil, apperrors.New(apperrors.KindIO, "load config", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.New(apperrors.KindConfig, "load config",
				fmt.Errorf("failed to parse %s: %w", configPath, err))
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.New(apperrors.KindConfig, "load config",
			fmt.Errorf("failed to read environment: %w", err))
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration. The email block is only checked when
// email is enabled.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Paths); err != nil {
		return apperrors.New(apperrors.KindConfig, "validate config", describe("paths", err))
	}
	if err := validate.Struct(c.Logging); err != nil {
		return apperrors.New(apperrors.KindConfig, "validate config", describe("logging", err))
	}
	if c.Email.Enabled {
		if err := c.Email.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the SMTP settings are complete.
func (e EmailConfig) Validate() error {
	if err := validate.Struct(e); err != nil {
		return apperrors.New(apperrors.KindConfig, "validate config", describe("email", err))
	}
	return nil
}

// SenderAddress returns From, falling back to Username.
func (e EmailConfig) SenderAddress() string {
	if e.From != "" {
		return e.From
	}
	return e.Username
}

// describe turns validator errors into "section.field: rule" messages.
func describe(section string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s.%s failed %q", section, fe.Field(), fe.Tag()))
	}
	return errors.Join(msgs...)
}
