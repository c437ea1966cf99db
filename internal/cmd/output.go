package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"

	"github.com/QwQ3213/ACELimiter/internal/process"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// recordStatus renders the state column for a record
func recordStatus(r process.Record) string {
	switch {
	case r.Adjusted:
		return statusOkStyle.Render("Limited")
	case r.Error != "":
		return statusErrorStyle.Render("Failed: " + r.Error)
	default:
		return "Not limited"
	}
}

// renderRecords draws records as a bordered table
func renderRecords(records []process.Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		Headers("PID", "Name", "Status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range records {
		t.Row(fmt.Sprintf("%d", r.PID), r.Name, recordStatus(r))
	}
	return t.Render()
}

// printRecords writes records as a table, or as JSON when asJSON is set
func printRecords(w io.Writer, records []process.Record, asJSON bool) error {
	if asJSON {
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No ACE processes found")
		return nil
	}
	fmt.Fprintln(w, renderRecords(records))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
