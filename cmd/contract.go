package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	contractABIFile string
	contractBuiltin string
	contractFetch   bool
	contractURL     string
	contractChain   string
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage contract bookmarks",
	Long: `Bookmarks remember a contract's address, chain and ABI so other commands
can take --contract <name> instead.`,
}

// ── contract add ──────────────────────────────────────────────────────────────

var contractAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Bookmark a contract",
	Long: `Bookmark a contract under a name.

ABI source (pick one):
  --abi <file>        Raw ABI JSON array or Hardhat/Foundry artifact
  --builtin <id>      A bundled ABI (see: abistudio contract builtins)
  --fetch             The verified ABI from the chain's block explorer
  --url <url>         ABI JSON served over HTTP

Examples:
  abistudio contract add usdc  0xA0b8... --builtin erc20 --chain ethereum
  abistudio contract add vault 0x5FbD... --abi ./out/Vault.sol/Vault.json --chain anvil
  abistudio contract add pool  0x8ad5... --fetch --chain base`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		c, err := resolveChain(contractChain)
		if err != nil {
			return err
		}
		if _, err := contract.ValidateAddress(address); err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		e := &contract.Entry{Name: name, Network: c.Name, Address: address}
		switch {
		case contractBuiltin != "":
			if _, ok := contract.GetBuiltin(contractBuiltin); !ok {
				return fmt.Errorf("unknown built-in %q (run `abistudio contract builtins`)", contractBuiltin)
			}
			e.Builtin = contractBuiltin

		case contractABIFile != "":
			text, err := contract.LoadABIFile(contractABIFile)
			if err != nil {
				return err
			}
			e.ABI, e.Source = json.RawMessage(text), contractABIFile

		case contractURL != "":
			text, err := contract.NewFetcher("").FetchFromURL(ctx, contractURL)
			if err != nil {
				return err
			}
			e.ABI, e.Source = json.RawMessage(text), contractURL

		case contractFetch:
			if c.ExplorerAPI == "" {
				return fmt.Errorf("%s has no block explorer API; pass --abi <file> instead", c.Label())
			}
			spin := ui.NewSpinner(cmd.ErrOrStderr(), "Fetching ABI from "+c.ExplorerAPI+"...")
			spin.Start()
			text, err := contract.NewFetcher(cfg.ExplorerAPIKey).FetchFromExplorer(ctx, c.ExplorerAPI, address)
			spin.Stop()
			if err != nil {
				return err
			}
			e.ABI, e.Source = json.RawMessage(text), "explorer"

		default:
			return errors.New("no ABI given: pass --abi, --builtin, --fetch or --url")
		}

		reg, err := contractRegistry()
		if err != nil {
			return err
		}
		if err := reg.Add(e); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}

		text, _ := e.ABIText()
		cat, _, _ := contract.Parse(text)
		fmt.Println(ui.Success(fmt.Sprintf("Bookmarked %q on %s at %s", name, c.Name, ui.Addr(e.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("%d function(s). Explore them with: abistudio studio --contract %s", cat.Len(), name)))
		return nil
	},
}

// ── contract list ─────────────────────────────────────────────────────────────

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarked contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := contractRegistry()
		if err != nil {
			return err
		}

		entries := reg.All()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No contracts bookmarked yet."))
			fmt.Println(ui.Hint("Add one with: abistudio contract add <name> <address> --abi <file.json>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name"},
			{Title: "Chain"},
			{Title: "Address", Width: 44},
			{Title: "ABI"},
			{Title: "Functions"},
		})
		for _, e := range entries {
			t.AddRow(ui.Row{
				ui.Val(e.Name),
				ui.ChainName(e.Network),
				ui.Addr(e.Address),
				abiOrigin(e),
				fmt.Sprintf("%d", functionCount(e)),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d contract(s) bookmarked", len(entries))))
		return nil
	},
}

func abiOrigin(e *contract.Entry) string {
	switch {
	case e.Builtin != "":
		return "builtin:" + e.Builtin
	case e.Source != "":
		return ui.Meta(e.Source)
	}
	return ui.Meta("inline")
}

func functionCount(e *contract.Entry) int {
	text, err := e.ABIText()
	if err != nil {
		return 0
	}
	cat, _, err := contract.Parse(text)
	if err != nil {
		return 0
	}
	return cat.Len()
}

// ── contract remove ───────────────────────────────────────────────────────────

var contractRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := findBookmark(args[0], contractChain)
		if err != nil {
			return err
		}
		reg, err := contractRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(e.Name, e.Network); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed %q on %s", e.Name, e.Network)))
		return nil
	},
}

// ── contract builtins ─────────────────────────────────────────────────────────

var contractBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the bundled ABIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "ID"},
			{Title: "Name"},
			{Title: "Functions"},
			{Title: "Description", Width: 54},
		})
		for _, b := range contract.AllBuiltins() {
			t.AddRow(ui.Row{
				ui.Val(b.ID),
				b.Name,
				fmt.Sprintf("%d", functionCount(&contract.Entry{Builtin: b.ID})),
				ui.Meta(b.Description),
			})
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Built-in ABIs"))
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Use: abistudio contract add <name> <address> --builtin <id>"))
		return nil
	},
}

func init() {
	contractAddCmd.Flags().StringVar(&contractABIFile, "abi", "", "ABI JSON file or Hardhat/Foundry artifact")
	contractAddCmd.Flags().StringVar(&contractBuiltin, "builtin", "", "bundled ABI id")
	contractAddCmd.Flags().BoolVar(&contractFetch, "fetch", false, "fetch the verified ABI from the block explorer")
	contractAddCmd.Flags().StringVar(&contractURL, "url", "", "fetch the ABI JSON from a URL")
	contractAddCmd.MarkFlagsMutuallyExclusive("abi", "builtin", "fetch", "url")

	for _, c := range []*cobra.Command{contractAddCmd, contractRemoveCmd} {
		c.Flags().StringVar(&contractChain, "chain", "", "chain id or slug (default: config)")
	}

	contractCmd.AddCommand(contractAddCmd, contractListCmd, contractRemoveCmd, contractBuiltinsCmd)
}
