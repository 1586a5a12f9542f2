// =============================================================================
// Invoice Report Automation - CSV Parser Module
// =============================================================================
//
// This module reads invoice exports that arrive as CSV instead of a
// spreadsheet. The result is the same types.Table the xlsx loader produces,
// so the rest of the pipeline does not care which format was supplied.
//
// FORMAT:
//   - Row 1 is the header row.
//   - Every following non-empty row is a data row.
//   - Short rows are padded with empty cells; long rows are truncated to
//     the header width.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/types"
)

const opParse = "csvparser.Parse"

// Settings controls how the CSV reader splits records.
type Settings struct {
	// Delimiter is the field separator. Accepts a single character or one
	// of the names "tab", "pipe", "semicolon". Default: ",".
	Delimiter string
}

// DefaultSettings returns comma-separated settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ","}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a comma-separated file into a table.
func Parse(filePath string) (types.Table, error) {
	return ParseWithSettings(filePath, DefaultSettings())
}

// ParseWithSettings reads a CSV file into a table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Reader settings.
//
// RETURNS:
//   - The parsed table.
//   - A KindFileNotFound error if the file does not exist, a
//     KindMissingColumn error if there is no header row, or a KindIO error
//     for any other read failure.
func ParseWithSettings(filePath string, settings Settings) (types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Table{}, apperrors.New(apperrors.KindFileNotFound, opParse, err)
		}
		return types.Table{}, apperrors.New(apperrors.KindIO, opParse, err)
	}
	defer file.Close()

	return Read(bufio.NewReader(file), settings)
}

// Read parses CSV records from r. The first record is the header row.
func Read(r io.Reader, settings Settings) (types.Table, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return types.Table{}, apperrors.New(apperrors.KindIO, opParse,
			fmt.Errorf("failed to read CSV: %w", err))
	}

	if len(allRows) == 0 || isRowEmpty(allRows[0]) {
		return types.Table{}, apperrors.Newf(apperrors.KindMissingColumn, opParse,
			"CSV file has no header row")
	}

	table := types.NewTable(cleanHeaders(allRows[0])...)
	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		table.AppendRow(cells...)
	}

	return table, nil
}

// configureReader applies the settings to the CSV reader.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Rows may be ragged; AppendRow pads them.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header names and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
