// internal/export/export.go
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is an output file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv, json and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

const sheetName = "Results"

// ParseFormat accepts a format name case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, JSON, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Filename returns "<base>.<ext>".
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Columns returns the column order to use: the given columns, or the sorted
// union of row keys when none are given.
func Columns(columns []string, rows []map[string]any) []string {
	if len(columns) > 0 {
		return columns
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format Format, columns []string, rows []map[string]any) error {
	columns = Columns(columns, rows)
	switch format {
	case CSV:
		return writeCSV(w, columns, rows)
	case JSON:
		return writeJSON(w, columns, rows)
	case XLSX:
		return writeXLSX(w, columns, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeCSV(w io.Writer, columns []string, rows []map[string]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = cellText(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, columns []string, rows []map[string]any) error {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		projected := make(map[string]any, len(columns))
		for _, col := range columns {
			projected[col] = row[col]
		}
		out[i] = projected
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeXLSX(w io.Writer, columns []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for r, row := range rows {
		cells := make([]any, len(columns))
		for i, col := range columns {
			cells[i] = xlsxValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// xlsxValue keeps numbers and booleans native; everything else becomes text.
func xlsxValue(v any) any {
	switch v.(type) {
	case nil:
		return nil
	case int, int32, int64, float32, float64, bool:
		return v
	default:
		return cellText(v)
	}
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
