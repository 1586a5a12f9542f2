package pipeline

import (
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
	"github.com/ginjaninja78/invoice-report-automation/internal/xlsxwriter"
)

// SampleTable returns the three-invoice table used to try the pipeline out.
func SampleTable() types.Table {
	tbl := types.NewTable(types.InputColumns...)
	tbl.AppendRow("INV000001", "Test Corp", "1000.50", "PAID", "2025-01-01")
	tbl.AppendRow("INV000002", "Demo Inc", "2500.75", "PENDING", "2025-01-15")
	tbl.AppendRow("INV000003", "Sample LLC", "750.25", "OVERDUE", "2025-01-30")
	return tbl
}

// WriteSample writes SampleTable to path.
func WriteSample(path string) error {
	return xlsxwriter.Write(path, SampleTable())
}
