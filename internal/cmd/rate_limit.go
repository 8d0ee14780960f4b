package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/catppuccin/api/internal/output"
	"github.com/catppuccin/api/internal/server/handlers"
)

var rateLimitStatusOutput string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect the request limiter of a running server",
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show this client's remaining request budget",
	Long: `Query /rate-limit-status on a running server.

The query itself counts against the budget unless the client is exempt;
requests from loopback addresses are never limited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitStatusOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		base, err := resolveServerURL()
		if err != nil {
			return err
		}

		var status handlers.RateLimitStatusResponse
		code, err := getJSON(cmd.Context(), base, "/rate-limit-status", &status)
		if err != nil {
			return err
		}
		if code != http.StatusOK {
			return fmt.Errorf("rate limit status returned %d", code)
		}

		out := cmd.OutOrStdout()
		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(payload))
			return err
		}

		_, err = fmt.Fprint(out, ascii.DrawBox(strings.Join(rateLimitLines(base, status), "\n"), 0))
		return err
	},
}

func rateLimitLines(base string, status handlers.RateLimitStatusResponse) []string {
	return []string{
		"Rate Limit",
		"",
		fmt.Sprintf("Server:    %s", base),
		fmt.Sprintf("Client:    %s", status.ClientIP),
		fmt.Sprintf("Used:      %d of %d", status.Used, status.Limit),
		fmt.Sprintf("Remaining: %d", status.Remaining),
		fmt.Sprintf("Resets in: %ds", status.ResetInSeconds),
	}
}

func init() {
	rateLimitStatusCmd.Flags().StringVar(&rateLimitStatusOutput, "output-format", string(output.FormatTable), "Output format: table|json")
	rateLimitStatusCmd.Flags().StringVar(&serverURL, "url", "", "server base URL (default derived from server.host/server.port)")
	rateLimitCmd.AddCommand(rateLimitStatusCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
