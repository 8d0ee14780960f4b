package cmd

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/catppuccin/api/internal/errors"
	"github.com/catppuccin/api/internal/observability"
)

var healthProbe string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running server's health endpoint",
	Long: `Probe a running server and exit non-zero when it is unhealthy.

Suitable as a container health check. --probe selects live, ready or startup;
the default queries the full /health report.`,
	Run: func(cmd *cobra.Command, args []string) {
		base, err := resolveServerURL()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration", err)
			return
		}

		path := "/health"
		switch healthProbe {
		case "":
		case "live", "ready", "startup":
			path += "/" + healthProbe
		default:
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Unknown probe",
				errwrap.NewInvalidInputError(fmt.Sprintf("probe must be live, ready or startup, got %q", healthProbe)))
			return
		}

		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		status, err := getJSON(cmd.Context(), base, path, &body)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Health probe failed", err)
			return
		}

		names := make([]string, 0, len(body.Checks))
		for name := range body.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			observability.CLILogger.Info(fmt.Sprintf("  %s: %s", name, body.Checks[name]))
		}

		if status != http.StatusOK {
			observability.CLILogger.Error("❌ Server unhealthy",
				zap.Int("status", status),
				zap.String("endpoint", base+path))
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Server unhealthy",
				errwrap.NewServiceUnavailableError(fmt.Sprintf("%s returned %d", path, status)))
			return
		}

		label := body.Status
		if label == "" {
			label = "healthy"
		}
		observability.CLILogger.Info("✅ Server " + label)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&serverURL, "url", "", "server base URL (default derived from server.host/server.port)")
	healthCmd.Flags().StringVar(&healthProbe, "probe", "", "probe to query: live, ready or startup")
}
