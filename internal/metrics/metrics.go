// Package metrics exposes the outcome of the last pipeline run as Prometheus
// gauges. The batch has no long-lived process to scrape, so the gauges are
// written to a textfile for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/invoice-report-automation/pkg/utils"
)

// Observation is the part of a run result that is exported.
type Observation struct {
	Success   bool
	Finished  time.Time
	Duration  time.Duration
	Records   int
	Total     decimal.Decimal
	EmailSent bool
}

// Registry holds the run gauges on a private prometheus.Registry, so the
// textfile contains only invoicer_* series and no Go runtime collectors.
type Registry struct {
	reg         *prometheus.Registry
	Success     prometheus.Gauge
	Timestamp   prometheus.Gauge
	DurationSec prometheus.Gauge
	Invoices    prometheus.Gauge
	TotalAmount prometheus.Gauge
	EmailSent   prometheus.Gauge
}

// NewRegistry creates the gauges and registers them. All gauges start at 0.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_last_run_success",
		Help: "1 if the last run processed and reported successfully, 0 otherwise.",
	})
	timestamp := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_last_run_duration_seconds",
		Help: "Wall time of the last run.",
	})
	invoices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_invoices_processed",
		Help: "Invoices in the last processed table.",
	})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_invoice_total_amount",
		Help: "Sum of invoice amounts in the last run.",
	})
	emailSent := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "invoicer_email_sent",
		Help: "1 if the last run delivered the report email.",
	})

	r.MustRegister(success, timestamp, duration, invoices, total, emailSent)
	return &Registry{
		reg:         r,
		Success:     success,
		Timestamp:   timestamp,
		DurationSec: duration,
		Invoices:    invoices,
		TotalAmount: total,
		EmailSent:   emailSent,
	}
}

// Observe sets every gauge from one run.
func (r *Registry) Observe(o Observation) {
	r.Success.Set(boolToFloat(o.Success))
	r.Timestamp.Set(float64(o.Finished.Unix()))
	r.DurationSec.Set(o.Duration.Seconds())
	r.Invoices.Set(float64(o.Records))
	r.TotalAmount.Set(o.Total.InexactFloat64())
	r.EmailSent.Set(boolToFloat(o.EmailSent))
}

// WriteTextfile writes the gauges in the text exposition format. The file
// is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Gatherer exposes the underlying registry for inspection.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
