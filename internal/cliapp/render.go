// internal/cliapp/render.go
package cliapp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/Annany2002/nebula-nlsql/internal/domain"
	"github.com/Annany2002/nebula-nlsql/internal/export"
)

// stdoutIsTerminal reports whether tables should be drawn instead of JSON.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	return table
}

// renderRows draws rows as a table or writes them as indented JSON.
func renderRows(w io.Writer, rows []map[string]any, asTable bool) error {
	if !asTable {
		return writeJSON(w, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}
	columns := export.Columns(nil, rows)
	table := newTable(w, columns)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v := row[col]; v != nil {
				cells[i] = fmt.Sprint(v)
			} else {
				cells[i] = "NULL"
			}
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

// renderSchema draws one line per column.
func renderSchema(w io.Writer, tables []domain.TableSchema, asTable bool) error {
	if !asTable {
		return writeJSON(w, tables)
	}
	table := newTable(w, []string{"Table", "Column", "Type", "Nullable", "Default", "Constraints"})
	for _, t := range tables {
		for _, col := range t.Columns {
			def := ""
			if col.Default != nil {
				def = *col.Default
			}
			nullable := "NO"
			if col.Nullable {
				nullable = "YES"
			}
			table.Append([]string{t.Name, col.Name, col.Type, nullable, def, strings.Join(col.Constraints, ", ")})
		}
	}
	table.Render()
	return nil
}

// renderBatch prints each statement's outcome followed by its rows.
func renderBatch(w io.Writer, results []domain.StatementResult, asTable bool) error {
	if !asTable {
		return writeJSON(w, results)
	}
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(w, "ERROR %s\n  %s\n\n", r.Query, r.Error)
			continue
		}
		fmt.Fprintf(w, "OK %s (%d rows, %d ms)\n", r.Query, r.RowCount, r.ExecutionTimeMs)
		if len(r.Rows) > 0 {
			if err := renderRows(w, r.Rows, true); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
