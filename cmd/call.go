package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	callTarget   targetFlags
	callSimulate bool
	callValue    string
	callYes      bool
)

var callCmd = &cobra.Command{
	Use:   "call <function> [input=value ...]",
	Short: "Call one contract function",
	Long: `Call a function of the loaded ABI against a deployed contract.

View and pure functions are read with eth_call. Other functions are
simulated, confirmed and sent as a signed transaction; --simulate stops
after the simulation and shows the prepared transaction.

Inputs are given as name=value, or positionally in declaration order.
Unnamed inputs are called param_0, param_1, ...

Examples:
  abistudio call balanceOf owner=0xf39F... --builtin erc20 --address 0xA0b8... --chain ethereum
  abistudio call eip712Domain --contract permit2
  abistudio call deposit --contract vault --value 0.5 --simulate
  abistudio call "transfer(address,uint256)" 0xf39F... 1000 --abi ./Token.json --address 0x5FbD... --chain anvil`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ws, err := prepareWorkspace(&callTarget)
		if err != nil {
			return err
		}
		defer ws.Close()

		fn, err := ws.session.Catalog().Lookup(args[0])
		if err != nil {
			return err
		}
		if !fn.IsRead() {
			if ws.signer, err = openSigner(); err != nil {
				return err
			}
		}
		row, err := assignInputs(fn, args[1:])
		if err != nil {
			return err
		}
		for name, value := range row {
			if err := ws.session.SetInput(fn.Key(), name, value); err != nil {
				return err
			}
		}

		if err := ws.check(fn, ws.session.Row(fn.Key())); err != nil {
			return err
		}

		var opts []dispatch.CallOption
		if callValue != "" {
			wei, err := chain.ParseAmount(callValue, ws.chain.NativeCurrency)
			if err != nil {
				return err
			}
			opts = append(opts, dispatch.WithCallValue(wei))
		}

		if !fn.IsRead() && !callSimulate && !callYes {
			prompt := fmt.Sprintf("Send a transaction calling %s on %s?", fn.Key(), ws.chain.Label())
			if !ui.Confirm(os.Stdin, os.Stderr, prompt) {
				fmt.Println(ui.Warn("Cancelled."))
				return nil
			}
		}

		if err := ws.connect(ctx, callTarget.rpc); err != nil {
			return err
		}

		spin := ui.NewSpinner(os.Stderr, fmt.Sprintf("%s %s on %s...", verb(fn, callSimulate), fn.Key(), ws.chain.DisplayName))
		spin.Start()
		res, err := ws.controller().Dispatch(ctx, fn, ws.session.Row(fn.Key()), callSimulate, opts...)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(resultHeader(ws, res))
		fmt.Println(ui.RenderNode(res.Render()))
		return nil
	},
}

func verb(fn *contract.FunctionDescriptor, simulate bool) string {
	switch {
	case fn.IsRead():
		return "Calling"
	case simulate:
		return "Simulating"
	}
	return "Sending"
}

// assignInputs maps command-line arguments onto the inputs of fn. An
// argument "name=value" whose name is an input of fn sets that input; any
// other argument fills the next input in declaration order.
func assignInputs(fn *contract.FunctionDescriptor, args []string) (contract.InputRow, error) {
	names := make(map[string]bool, len(fn.Inputs))
	for i := range fn.Inputs {
		names[fn.InputName(i)] = true
	}

	row := contract.InputRow{}
	next := 0
	for _, arg := range args {
		if name, value, ok := strings.Cut(arg, "="); ok && names[name] {
			row[name] = value
			continue
		}
		if next >= len(fn.Inputs) {
			return nil, fmt.Errorf("%s takes %d input(s), got extra argument %q", fn.Key(), len(fn.Inputs), arg)
		}
		row[fn.InputName(next)] = arg
		next++
	}
	return row, nil
}

func resultHeader(ws *workspace, res *dispatch.InvocationResult) string {
	note := res.Note
	if res.IsSimulation {
		note = "simulation: " + note
	}
	pairs := [][2]string{
		{"Function", ui.Val(res.Function)},
		{"Contract", ui.Addr(ws.address)},
		{"Chain", ui.ChainName(ws.chain.Label())},
		{"Status", ui.StyleSuccess.Render(note)},
	}
	if res.TxHash != nil {
		pairs = append(pairs, [2]string{"Tx Hash", ui.Val(res.TxHash.Hex())})
	}
	return ui.KeyValueBlock(ws.title, pairs)
}

func init() {
	callTarget.register(callCmd)
	callCmd.Flags().BoolVar(&callSimulate, "simulate", false, "simulate a transaction without sending it")
	callCmd.Flags().StringVar(&callValue, "value", "", "native currency to send with a payable call, e.g. 0.05")
	callCmd.Flags().BoolVarP(&callYes, "yes", "y", false, "send transactions without asking")
}
