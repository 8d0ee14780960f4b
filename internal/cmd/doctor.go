package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/catppuccin/api/internal/config"
	"github.com/catppuccin/api/internal/dataset"
	"github.com/catppuccin/api/internal/fetch"
	"github.com/catppuccin/api/internal/observability"
)

var doctorSkipNetwork bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the local setup and the upstream dataset hosts.",
	Run: func(cmd *cobra.Command, args []string) {
		log := observability.CLILogger
		identity := GetAppIdentity()
		log.Info("=== " + identity.BinaryName + " doctor ===")
		log.Info("")

		allChecks := true
		const totalChecks = 6
		step := func(n int, what string) string { return fmt.Sprintf("[%d/%d] Checking %s...", n, totalChecks, what) }

		goVersion := runtime.Version()
		log.Info(step(1, "Go runtime")+" ✅ "+goVersion, zap.String("go_version", goVersion))

		version := crucible.GetVersion()
		if version.Crucible != "" && version.Gofulmen != "" {
			log.Info(fmt.Sprintf("%s ✅ gofulmen %s, crucible %s", step(2, "Fulmen libraries"), version.Gofulmen, version.Crucible))
		} else {
			log.Warn(step(2, "Fulmen libraries") + " ⚠️  version metadata unavailable")
			allChecks = false
		}

		if dir := gfconfig.GetAppConfigDir(identity.ConfigName); dir != "" {
			log.Info(step(3, "config directory")+" ✅ "+dir, zap.String("config_dir", dir))
		} else {
			log.Warn(step(3, "config directory") + " ⚠️  cannot resolve XDG config directory")
			allChecks = false
		}

		cfg, cfgErr := loadConfig()
		if cfgErr != nil {
			log.Error(step(4, "configuration")+" ❌ invalid", zap.Error(cfgErr))
			allChecks = false
		} else {
			log.Info(fmt.Sprintf("%s ✅ %d requests per %s", step(4, "configuration"), cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		switch {
		case cfgErr != nil:
			log.Warn(step(5, "static directory") + " ⚠️  skipped (config not loaded)")
		case staticDirStatus(cfg) != "":
			log.Warn(step(5, "static directory")+" ⚠️  "+staticDirStatus(cfg), zap.String("static_dir", cfg.Server.StaticDir))
		default:
			log.Info(step(5, "static directory")+" ✅ "+cfg.Server.StaticDir, zap.String("static_dir", cfg.Server.StaticDir))
		}

		switch {
		case doctorSkipNetwork:
			log.Info(step(6, "upstream datasets") + " ⏭️  skipped (--offline)")
		case cfgErr != nil:
			log.Warn(step(6, "upstream datasets") + " ⚠️  skipped (config not loaded)")
		default:
			failures := checkUpstream(cmd.Context(), cfg)
			if len(failures) == 0 {
				log.Info(step(6, "upstream datasets") + " ✅ all reachable")
			} else {
				log.Warn(fmt.Sprintf("%s ⚠️  %d unreachable on main", step(6, "upstream datasets"), len(failures)))
				for name, err := range failures {
					log.Warn(fmt.Sprintf("       %s: %v", name, err))
				}
				allChecks = false
			}
		}

		log.Info("")
		if allChecks {
			log.Info("✅ All checks passed.")
		} else {
			log.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
		log.Info("")
		log.Info("=== End Diagnostics ===")
	},
}

func staticDirStatus(cfg *config.Config) string {
	info, err := os.Stat(cfg.Server.StaticDir)
	switch {
	case os.IsNotExist(err):
		return cfg.Server.StaticDir + " (missing; / will return 404)"
	case err != nil:
		return fmt.Sprintf("%s (error: %v)", cfg.Server.StaticDir, err)
	case !info.IsDir():
		return cfg.Server.StaticDir + " (not a directory)"
	}
	return ""
}

// checkUpstream fetches each dataset's main revision and returns failures by
// dataset name.
func checkUpstream(ctx context.Context, cfg *config.Config) map[string]error {
	transport := fetch.NewHTTPTransport(cfg.Datasets.Timeout)
	registry := dataset.DefaultRegistry()

	failures := make(map[string]error)
	for _, ds := range registry.Datasets() {
		loc, _ := registry.Lookup(ds)
		reqCtx, cancel := context.WithTimeout(ctx, cfg.Datasets.Timeout+time.Second)
		_, err := transport.FetchBytes(reqCtx, loc.URL(cfg.Datasets.BaseURL, false))
		cancel()
		if err != nil {
			failures[ds.String()] = err
		}
	}
	return failures
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorSkipNetwork, "offline", false, "skip upstream reachability checks")
}
