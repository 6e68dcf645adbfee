package cmd

import (
	"os"

	"github.com/encodeous/p4p/state"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "p4p",
	Short: "P4P Portal Client",
	Long: `p4p queries a P4P portal for network locality information.
It maps addresses to PIDs, fetches pdistances between PIDs, and fetches the prefixes each PID covers, so applications can prefer nearby peers.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	portalFlag    string
	discoveryFlag string
	viewFlag      string
	verbose       bool
	yamlOutput    bool
)

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Configure the client",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "portal",
		Title: "Portal Queries",
	})
	rootCmd.PersistentFlags().StringVarP(&state.ClientConfigPath, "config", "c", state.ClientConfigPath, "client config")
	rootCmd.PersistentFlags().StringVarP(&portalFlag, "portal", "p", "", "portal host:port, overrides the config")
	rootCmd.PersistentFlags().StringVar(&discoveryFlag, "discovery", "", "portal directory host:port, overrides the config")
	rootCmd.PersistentFlags().StringVar(&viewFlag, "view", "", "portal view, overrides the config")
	rootCmd.PersistentFlags().Duration("timeout", 0, "deadline for a single exchange, overrides the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "print results as yaml")
}
