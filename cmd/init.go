package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/encodeous/p4p/core"
	"github.com/encodeous/p4p/state"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a client configuration",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(state.ClientConfigPath); err == nil && !force {
			exitOnError(fmt.Errorf("%s already exists, use --force to overwrite", state.ClientConfigPath))
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			exitOnError(err)
		}

		cfg := state.DefaultClientCfg()
		if portalFlag != "" {
			svc, err := state.ParseInetService(portalFlag)
			exitOnError(err)
			cfg.Portal = &svc
		}
		if discoveryFlag != "" {
			svc, err := state.ParseInetService(discoveryFlag)
			exitOnError(err)
			cfg.Discovery = &svc
		}
		if viewFlag != "" {
			cfg.View = viewFlag
		}
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			cfg.Timeout = timeout
		}
		if metrics, _ := cmd.Flags().GetBool("metrics"); metrics {
			cfg.MetricsListen = state.DefaultMetricsListen
		}
		exitOnError(state.ClientConfigValidator(&cfg))
		exitOnError(core.WriteClientConfig(state.ClientConfigPath, &cfg))
		fmt.Printf("Wrote %s\n", state.ClientConfigPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing config")
	initCmd.Flags().Bool("metrics", false, "serve /debug/metrics on "+state.DefaultMetricsListen)
}
