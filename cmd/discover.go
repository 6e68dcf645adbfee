package cmd

import (
	"fmt"
	"net/http"
	"net/netip"

	"github.com/encodeous/p4p/core"
	"github.com/encodeous/p4p/state"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [address]",
	Short: "Asks the portal directory which portal serves an address",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var addr netip.Addr
		if len(args) == 1 {
			var err error
			addr, err = netip.ParseAddr(args[0])
			if err != nil {
				exitOnError(fmt.Errorf("invalid address %s: %w", args[0], err))
			}
		}
		cfg, err := loadConfig(cmd)
		exitOnError(err)
		if cfg.Discovery == nil {
			exitOnError(fmt.Errorf("no discovery service configured, use --discovery"))
		}
		log, err := newLogger(cfg)
		exitOnError(err)

		ch := core.NewHTTPChannel(cfg.Scheme, *cfg.Discovery, &http.Client{Timeout: cfg.Timeout})
		ch.UserAgent = cfg.UserAgent
		client := core.NewClient(ch, state.DefaultView, cfg.Timeout, log)

		svc, err := client.Discover(commandContext(cmd), addr)
		exitOnError(err)
		if yamlOutput {
			exitOnError(printYaml(map[string]string{"portal": svc.String()}))
			return
		}
		fmt.Println(svc.String())
	},
	GroupID: "portal",
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
