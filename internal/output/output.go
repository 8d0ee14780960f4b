// Package output renders dataset status reports for the CLI.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/gateway"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// DatasetRow joins a dataset's upstream location with its cache state.
type DatasetRow struct {
	Dataset          string     `json:"dataset"`
	Repository       string     `json:"repository"`
	Path             string     `json:"path"`
	FallbackRevision string     `json:"fallback_revision"`
	Ready            bool       `json:"ready"`
	Source           string     `json:"source,omitempty"`
	Revision         string     `json:"revision,omitempty"`
	URL              string     `json:"url,omitempty"`
	FetchedAt        *time.Time `json:"fetched_at,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
}

// Formatter renders dataset rows.
type Formatter interface {
	FormatDatasets(rows []DatasetRow) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// DatasetRows lists every dataset in registry order, filling cache fields
// from statuses where present.
func DatasetRows(registry *dataset.Registry, statuses []gateway.EntryStatus) []DatasetRow {
	byDataset := make(map[dataset.Dataset]gateway.EntryStatus, len(statuses))
	for _, st := range statuses {
		byDataset[st.Dataset] = st
	}

	rows := make([]DatasetRow, 0, len(registry.Datasets()))
	for _, ds := range registry.Datasets() {
		loc, _ := registry.Lookup(ds)
		row := DatasetRow{
			Dataset:          ds.String(),
			Repository:       loc.Repository,
			Path:             loc.Path,
			FallbackRevision: loc.FallbackRevision,
		}
		if st, ok := byDataset[ds]; ok {
			row.Ready = st.Ready
			row.Source = string(st.Source)
			row.Revision = st.Revision
			row.URL = st.URL
			row.FetchedAt = st.FetchedAt
			row.LastError = st.LastError
		}
		rows = append(rows, row)
	}
	return rows
}

func statusLabel(row DatasetRow) string {
	switch {
	case row.Ready:
		return fmt.Sprintf("ready (%s @ %s)", row.Source, shortRevision(row.Revision))
	case row.LastError != "":
		return "failed"
	default:
		return "not loaded"
	}
}

func shortRevision(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

func fetchedLabel(row DatasetRow) string {
	if row.FetchedAt == nil {
		return "-"
	}
	return row.FetchedAt.UTC().Format(time.RFC3339)
}
