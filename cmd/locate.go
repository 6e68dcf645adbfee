package cmd

import (
	"fmt"
	"net/netip"

	"github.com/encodeous/p4p/state"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate address...",
	Short: "Maps addresses to PIDs locally using the portal's PID map",
	Long:  `Fetches the PID map once and resolves every address against it by longest prefix match, without sending the addresses to the portal.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addrs := make([]netip.Addr, 0, len(args))
		for _, a := range args {
			addr, err := netip.ParseAddr(a)
			if err != nil {
				exitOnError(fmt.Errorf("invalid address %s: %w", a, err))
			}
			addrs = append(addrs, addr)
		}
		client, err := setupClient(cmd)
		exitOnError(err)

		pidMap, err := client.LookupPIDPrefixMap(commandContext(cmd))
		exitOnError(err)
		locator := state.NewPIDLocator(pidMap)
		client.Log.Debug("built pid locator", "networks", locator.Size())

		found := make([]state.Pair[netip.Addr, string], 0, len(addrs))
		for _, addr := range addrs {
			pid, ok := locator.Lookup(addr)
			if !ok {
				found = append(found, state.Pair[netip.Addr, string]{V1: addr, V2: "unknown"})
				continue
			}
			found = append(found, state.Pair[netip.Addr, string]{V1: addr, V2: pid.String()})
		}
		state.SortPairsFunc(found, netip.Addr.Compare)

		if yamlOutput {
			records := make([]pidRecord, 0, len(found))
			for _, f := range found {
				records = append(records, pidRecord{Addr: f.V1.String(), PID: f.V2})
			}
			exitOnError(printYaml(records))
			return
		}
		for _, f := range found {
			fmt.Printf("%s\t%s\n", f.V1, f.V2)
		}
	},
	GroupID: "portal",
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
