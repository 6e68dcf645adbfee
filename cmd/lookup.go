package cmd

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"

	"github.com/encodeous/p4p/state"
	"github.com/spf13/cobra"
)

type pidRecord struct {
	Addr string `yaml:"addr"`
	PID  string `yaml:"pid"`
}

type distanceRecord struct {
	Src      string  `yaml:"src"`
	Dst      string  `yaml:"dst"`
	Distance float64 `yaml:"distance"`
}

type pidMapRecord struct {
	PID      string   `yaml:"pid"`
	Prefixes []string `yaml:"prefixes"`
}

var pidCmd = &cobra.Command{
	Use:   "pid [address...]",
	Short: "Maps addresses to PIDs",
	Long:  `Asks the portal for the PID of each address. Without arguments the portal answers for the address this request comes from.`,
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

		res, err := client.LookupPIDs(commandContext(cmd), addrs)
		exitOnError(err)

		records := make([]pidRecord, 0, len(res))
		for _, addr := range slices.SortedFunc(maps.Keys(res), netip.Addr.Compare) {
			records = append(records, pidRecord{Addr: addr.String(), PID: res[addr].String()})
		}
		if yamlOutput {
			exitOnError(printYaml(records))
			return
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.Addr, r.PID)
		}
	},
	GroupID: "portal",
}

var reverseFlag bool

var pdistanceCmd = &cobra.Command{
	Use:   "pdistance [src-pid dst-pid...]",
	Short: "Fetches pdistances from a source PID",
	Long: `Fetches the pdistance from src-pid to each dst-pid. With --reverse the distance back to src-pid is fetched as well.
Without arguments the portal returns every pdistance it has.`,
	Run: func(cmd *cobra.Command, args []string) {
		var vectors []state.PIDDestVector
		if len(args) > 0 {
			pids := make([]state.PID, 0, len(args))
			for _, a := range args {
				pid, err := state.ParsePID(a)
				exitOnError(err)
				pids = append(pids, pid)
			}
			vectors = append(vectors, state.NewPIDDestVector(pids[0], reverseFlag, pids[1:]...))
		}
		client, err := setupClient(cmd)
		exitOnError(err)

		res, err := client.LookupDistances(commandContext(cmd), vectors)
		exitOnError(err)

		if yamlOutput {
			records := make([]distanceRecord, 0, res.Len())
			for _, e := range res.Entries(state.ComparePID) {
				records = append(records, distanceRecord{Src: e.V1.String(), Dst: e.V2.String(), Distance: e.V3})
			}
			exitOnError(printYaml(records))
			return
		}
		fmt.Print(state.FormatPIDMatrix(res))
	},
	GroupID: "portal",
}

var coalesceFlag bool

var pidMapCmd = &cobra.Command{
	Use:   "pidmap",
	Short: "Fetches the prefixes covered by each PID",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := setupClient(cmd)
		exitOnError(err)

		res, err := client.LookupPIDPrefixMap(commandContext(cmd))
		exitOnError(err)

		records := make([]pidMapRecord, 0, len(res))
		for _, pid := range slices.SortedFunc(maps.Keys(res), state.ComparePID) {
			prefixes := res[pid]
			if coalesceFlag {
				prefixes = state.CoalescePrefixes(prefixes)
			}
			strs := make([]string, 0, len(prefixes))
			for _, p := range prefixes {
				strs = append(strs, p.String())
			}
			records = append(records, pidMapRecord{PID: pid.String(), Prefixes: strs})
		}
		if yamlOutput {
			exitOnError(printYaml(records))
			return
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.PID, strings.Join(r.Prefixes, " "))
		}
	},
	GroupID: "portal",
}

func init() {
	rootCmd.AddCommand(pidCmd)
	rootCmd.AddCommand(pdistanceCmd)
	pdistanceCmd.Flags().BoolVarP(&reverseFlag, "reverse", "r", false, "also fetch the distance from each destination back to the source")
	rootCmd.AddCommand(pidMapCmd)
	pidMapCmd.Flags().BoolVar(&coalesceFlag, "coalesce", false, "merge adjacent prefixes of each PID")
}
