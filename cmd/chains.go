package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	chainsTestnet bool
	chainsMainnet bool
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	Long: `List the chain registry: the built-in chains plus any chains defined in
the overlay file (config chains_file, default ~/.abistudio/chains.toml).

Overlay format:
  [[chain]]
  id = 31337
  name = "anvil"
  display_name = "Anvil"
  rpc_urls = ["http://127.0.0.1:8545"]
  testnet = true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := chainRegistry()
		if err != nil {
			return err
		}

		chains := reg.All()
		switch {
		case chainsTestnet:
			chains = reg.Filter(true)
		case chainsMainnet:
			chains = reg.Filter(false)
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Chains"))
		fmt.Println(chainTable(chains, cfg.DefaultChain))
		fmt.Println(ui.Meta(fmt.Sprintf("%d chain(s)", len(chains))))
		return nil
	},
}

func chainTable(chains []chain.Chain, defaultChain string) string {
	t := ui.NewTable([]ui.Column{
		{Title: "ID"},
		{Title: "Name"},
		{Title: "Display Name"},
		{Title: "Currency"},
		{Title: "Type"},
		{Title: "RPC", Width: 44},
	})
	for _, c := range chains {
		kind := "mainnet"
		if c.Testnet {
			kind = "testnet"
		}
		name := ui.ChainName(c.Name)
		if c.Name == defaultChain {
			name += ui.Meta(" *")
		}
		t.AddRow(ui.Row{
			fmt.Sprintf("%d", c.ID),
			name,
			c.DisplayName,
			c.NativeCurrency.Symbol,
			ui.Meta(kind),
			ui.Meta(c.DefaultRPC()),
		})
	}
	return t.Render()
}

func init() {
	chainsCmd.Flags().BoolVar(&chainsTestnet, "testnet", false, "only testnets")
	chainsCmd.Flags().BoolVar(&chainsMainnet, "mainnet", false, "only mainnets")
	chainsCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")
}
