package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	functionsABI   abiFlags
	functionsChain string
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the callable functions of an ABI",
	Long: `Parse an ABI and print its function catalog: the key to call each function
by, its selector, mutability, inputs and outputs.

Overloaded functions are keyed by their full signature, e.g. "transfer(address,uint256)".

Examples:
  abistudio functions --abi ./out/Vault.sol/Vault.json
  abistudio functions --builtin erc20
  abistudio functions --contract usdc --chain base`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		abi, err := functionsABI.load(functionsChain)
		if err != nil {
			return err
		}
		cat, _, err := contract.Parse(abi.text)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Functions · "+abi.title))
		fmt.Println(catalogTable(cat))

		reads := lo.CountBy(cat.Functions(), func(f *contract.FunctionDescriptor) bool { return f.IsRead() })
		fmt.Println(ui.Meta(fmt.Sprintf("%d function(s): %d read, %d write", cat.Len(), reads, cat.Len()-reads)))
		return nil
	},
}

func catalogTable(cat *contract.Catalog) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Function"},
		{Title: "Selector"},
		{Title: "Mutability"},
		{Title: "Inputs", Width: 40},
		{Title: "Outputs", Width: 24},
	})
	for _, fn := range cat.Functions() {
		name := ui.Val(fn.Key())
		if !fn.IsRead() {
			name = ui.StyleWarning.Render(fn.Key())
		}
		t.AddRow(ui.Row{
			name,
			ui.Meta(fn.SelectorHex()),
			string(fn.Mutability),
			inputList(fn),
			strings.Join(lo.Map(fn.Outputs, func(o contract.FunctionOutput, _ int) string { return o.Type }), ", "),
		})
	}
	return t.Render()
}

// inputList formats inputs as "type name, type name".
func inputList(fn *contract.FunctionDescriptor) string {
	parts := make([]string, len(fn.Inputs))
	for i, in := range fn.Inputs {
		parts[i] = in.Type + " " + fn.InputName(i)
	}
	return strings.Join(parts, ", ")
}

func init() {
	functionsABI.register(functionsCmd)
	functionsCmd.Flags().StringVar(&functionsChain, "chain", "", "chain of the bookmark when it exists on several")
}
