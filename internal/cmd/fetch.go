package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	errwrap "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/gateway"
	"github.com/catppuccin/api/internal/observability"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every dataset once and report the outcome",
	Long: `Fetch every dataset the way the server does on a cold cache: the main
revision first, then the pinned fallback. Exits non-zero if any dataset
cannot be loaded from either.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
			return
		}

		gw := newGateway(cfg, observability.CLILogger, false)
		results := prefetch(cmd.Context(), gw, observability.CLILogger)

		statuses := make(map[string]gateway.EntryStatus)
		for _, st := range gw.Status() {
			statuses[st.Dataset.String()] = st
		}

		lines, failed := fetchSummary(cfg.Datasets.BaseURL, results, statuses)
		fmt.Fprint(cmd.OutOrStdout(), ascii.DrawBox(strings.Join(lines, "\n"), 0))

		if failed > 0 {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Dataset fetch failed",
				errwrap.NewServiceUnavailableError(fmt.Sprintf("%d dataset(s) unavailable", failed)))
		}
	},
}

func fetchSummary(baseURL string, results []fetchResult, statuses map[string]gateway.EntryStatus) ([]string, int) {
	lines := []string{"Dataset Fetch", "", "Base URL: " + baseURL, ""}
	failed := 0
	for _, r := range results {
		name := r.Dataset.String()
		elapsed := r.Duration.Round(time.Millisecond)
		if r.Err != nil {
			failed++
			lines = append(lines, fmt.Sprintf("❌ %-11s %s (%s)", name, r.Err, elapsed))
			continue
		}
		st := statuses[name]
		revision := st.Revision
		if len(revision) > 7 {
			revision = revision[:7]
		}
		lines = append(lines, fmt.Sprintf("✅ %-11s %s @ %s (%s)", name, st.Source, revision, elapsed))
	}
	lines = append(lines, "", fmt.Sprintf("%d/%d loaded", len(results)-failed, len(results)))
	return lines, failed
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
