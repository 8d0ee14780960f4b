package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/observability"
	"github.com/catppuccin/api/internal/output"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the upstream datasets and where they are fetched from",
	Long: `List every dataset with its repository, path and pinned fallback revision.

With --fetch each dataset is loaded first, so the report shows which revision
answered and any fetch error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		doFetch, err := cmd.Flags().GetBool("fetch")
		if err != nil {
			return err
		}
		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gw := newGateway(cfg, observability.CLILogger, false)
		if doFetch {
			prefetch(cmd.Context(), gw, observability.CLILogger)
		}

		rendered, err := output.NewFormatter(format).FormatDatasets(output.DatasetRows(gw.Registry(), gw.Status()))
		if err != nil {
			return err
		}

		sink, err := openSink(cmd.OutOrStdout(), outPath, "datasets", format)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if _, err := fmt.Fprintln(sink.writer, rendered); err != nil {
			return err
		}
		if sink.path != "-" {
			observability.CLILogger.Info("Wrote dataset report", zap.String("path", sink.path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.Flags().String("output-format", string(output.FormatTable), "Output format: table|json|markdown")
	datasetsCmd.Flags().String("out", "", "Write output to a file, or a directory when the path ends in /")
	datasetsCmd.Flags().Bool("fetch", false, "Fetch every dataset before reporting")
}
