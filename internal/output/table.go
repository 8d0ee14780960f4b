package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders rows as an ASCII table.
type TableFormatter struct{}

// FormatDatasets renders dataset rows as a table.
func (f *TableFormatter) FormatDatasets(rows []DatasetRow) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Dataset", "Repository", "Path", "Fallback", "Status", "Fetched"})

	ready := 0
	for _, row := range rows {
		if row.Ready {
			ready++
		}
		status := statusLabel(row)
		if row.LastError != "" && !row.Ready {
			status += ": " + row.LastError
		}
		t.AppendRow(table.Row{
			row.Dataset,
			row.Repository,
			row.Path,
			shortRevision(row.FallbackRevision),
			status,
			fetchedLabel(row),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d/%d ready", ready, len(rows)), ""})
	return t.Render(), nil
}
