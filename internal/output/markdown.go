package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders rows as a markdown table.
type MarkdownFormatter struct{}

// FormatDatasets renders dataset rows as Markdown.
func (f *MarkdownFormatter) FormatDatasets(rows []DatasetRow) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Datasets\n\n")
	sb.WriteString("| Dataset | Repository | Path | Fallback | Status |\n")
	sb.WriteString("|---------|------------|------|----------|--------|\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | `%s` | `%s` | %s |\n",
			escapeMarkdownCell(row.Dataset),
			escapeMarkdownCell(row.Repository),
			escapeMarkdownCell(row.Path),
			escapeMarkdownCell(shortRevision(row.FallbackRevision)),
			escapeMarkdownCell(statusLabel(row)),
		))
	}

	for _, row := range rows {
		if row.LastError != "" {
			sb.WriteString(fmt.Sprintf("\n**%s**: %s\n", row.Dataset, row.LastError))
		}
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
