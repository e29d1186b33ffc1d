// probe-rpcs: probes every public RPC in the chain registry in parallel and
// prints which endpoints answer with the right chain ID, how fast, and at
// which block.
//
// Run from the module root:
//
//	go run ./scripts/probe-rpcs [--testnet]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/rpc"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

const probeTimeout = 8 * time.Second

var testnet bool

var probeCmd = &cobra.Command{
	Use:          "probe-rpcs",
	Short:        "Probe the registry's public RPC endpoints",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Chain"},
			{Title: "RPC", Width: 44},
			{Title: "Latency"},
			{Title: "Block"},
			{Title: "Note", Width: 40},
		})

		healthy := 0
		for _, c := range chain.NewRegistry().Filter(testnet) {
			for _, ep := range rpc.Probe(cmd.Context(), c.RPCURLs, c.ID, probeTimeout) {
				latency, block, note := "-", "-", ""
				if ep.Healthy {
					healthy++
					latency = ep.Latency.Round(time.Millisecond).String()
					block = fmt.Sprintf("%d", ep.BlockNumber)
				} else if ep.Err != nil {
					note = ui.StyleError.Render(shortErr(ep.Err))
				}
				t.AddRow(ui.Row{ui.ChainName(c.Name), ep.URL, latency, block, note})
			}
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d healthy endpoint(s)", healthy)))
		return nil
	},
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}

func init() {
	probeCmd.Flags().BoolVar(&testnet, "testnet", false, "probe testnets instead of mainnets")
}

func main() {
	if err := probeCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}
