package cmd

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var studioTarget targetFlags

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Browse and call contract functions interactively",
	Long: `Open the function studio: every function of the ABI, reads first, with an
input form and the latest result of each call.

Without --abi, --builtin or --contract you pick one of your bookmarks.

Examples:
  abistudio studio
  abistudio studio --contract usdc
  abistudio studio --abi ./out/Vault.sol/Vault.json --address 0x5FbD... --chain anvil`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if studioTarget.empty() {
			name, network, err := pickBookmark()
			if err != nil || name == "" {
				return err
			}
			studioTarget.contract = name
			if studioTarget.chain == "" {
				studioTarget.chain = network
			}
		}

		ws, err := openWorkspace(ctx, &studioTarget, true)
		if err != nil {
			return err
		}
		defer ws.Close()

		return ui.RunStudio(ui.NewStudio(ctx, ws.title, ws.session, ws.controller()))
	},
}

// pickBookmark lets the user choose a bookmarked contract. An empty name
// means the user cancelled.
func pickBookmark() (name, network string, err error) {
	reg, err := contractRegistry()
	if err != nil {
		return "", "", err
	}
	entries := reg.All()
	if len(entries) == 0 {
		return "", "", fmt.Errorf("%w: no bookmarks yet; pass --abi <file> or run `abistudio contract add`", contract.ErrContractNotFound)
	}

	items := lo.Map(entries, func(e *contract.Entry, _ int) ui.PickerItem {
		return ui.PickerItem{
			Label:    e.Name,
			SubLabel: e.Network + "  " + ui.TruncateAddr(e.Address),
			Value:    e.Name + "@" + e.Network,
		}
	})
	picked, err := ui.PickItem("Pick a contract", items)
	if err != nil || picked == "" {
		return "", "", err
	}
	e, _ := lo.Find(entries, func(e *contract.Entry) bool { return e.Name+"@"+e.Network == picked })
	return e.Name, e.Network, nil
}

func init() {
	studioTarget.register(studioCmd)
}
