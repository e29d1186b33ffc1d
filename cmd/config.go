package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var configRPCRemove bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		signer := cfg.Wallet
		if signer == "" {
			signer = ui.Meta("(none)")
		}
		explorerKey := ui.Meta("(none)")
		if cfg.ExplorerAPIKey != "" {
			explorerKey = "set"
		}
		timeout := cfg.ReceiptTimeout.String()
		if cfg.ReceiptTimeout == 0 {
			timeout = "unbounded"
		}
		pairs := [][2]string{
			{"Default Chain", ui.ChainName(cfg.DefaultChain)},
			{"Wallet", signer},
			{"Explorer Key", explorerKey},
			{"Receipt Timeout", timeout},
			{"Poll Interval", cfg.PollInterval.String()},
			{"Log Level", cfg.LogLevel},
			{"Chains File", cfg.ChainsFile},
			{"Directory", ui.Meta(cfg.Dir())},
		}
		chains := make([]string, 0, len(cfg.RPCOverrides))
		for c := range cfg.RPCOverrides {
			chains = append(chains, c)
		}
		sort.Strings(chains)
		for _, c := range chains {
			pairs = append(pairs, [2]string{"RPC " + c, strings.Join(cfg.RPCOverrides[c], ", ")})
		}
		fmt.Println(ui.KeyValueBlock("Configuration", pairs))
		return nil
	},
}

var configSetChainCmd = &cobra.Command{
	Use:   "set-chain <chain>",
	Short: "Set the default chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain(args[0])
		if err != nil {
			return err
		}
		cfg.DefaultChain = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Default chain set to " + c.Label()))
		return nil
	},
}

var configSetRPCCmd = &cobra.Command{
	Use:   "set-rpc <chain> <url>",
	Short: "Add (or with --remove, drop) an RPC override for a chain",
	Long: `RPC overrides are tried in order before the registry's public endpoints.

Examples:
  abistudio config set-rpc base https://base-mainnet.g.alchemy.com/v2/KEY
  abistudio config set-rpc anvil http://127.0.0.1:8545
  abistudio config set-rpc base https://old.example --remove`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain(args[0])
		if err != nil {
			return err
		}
		url := args[1]
		if configRPCRemove {
			if err := cfg.RemoveRPC(c.Name, url); err != nil {
				return err
			}
		} else if err := cfg.AddRPC(c.Name, url); err != nil {
			// Already there; not fatal.
			fmt.Println(ui.Warn(err.Error()))
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if configRPCRemove {
			fmt.Println(ui.Success(fmt.Sprintf("Removed %s from %s", url, c.Name)))
		} else {
			fmt.Println(ui.Success(fmt.Sprintf("RPC for %s: %s", c.Name, strings.Join(cfg.GetRPCs(c.Name), ", "))))
		}
		return nil
	},
}

var configSetWalletCmd = &cobra.Command{
	Use:   "set-wallet <name>",
	Short: "Sign transactions with a key from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := wallet.DefaultKeystore(cfg.Dir())
		if err != nil {
			return err
		}
		s, err := wallet.Open(ks, args[0])
		if err != nil {
			return fmt.Errorf("wallet %q: %w (import it with: abistudio config import-key %s)", args[0], err, args[0])
		}
		cfg.Wallet = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing with %q (%s)", args[0], ui.Addr(s.Address().Hex()))))
		return nil
	},
}

var configImportKeyCmd = &cobra.Command{
	Use:   "import-key <name>",
	Short: "Store a private key in the OS keychain",
	Long: `Store a hex private key in the OS keychain (or an encrypted file when no
keychain is available) under a name. The key is read from the terminal
without echo, or from stdin when piped.

The first imported key becomes the signing wallet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		hexKey, err := readSecret(fmt.Sprintf("Private key for %q: ", name))
		if err != nil {
			return err
		}

		ks, err := wallet.DefaultKeystore(cfg.Dir())
		if err != nil {
			return err
		}
		addr, err := wallet.Import(ks, name, hexKey)
		if err != nil {
			return err
		}
		if cfg.Wallet == "" {
			cfg.Wallet = name
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Stored %q for %s", name, ui.Addr(addr.Hex()))))
		if cfg.Wallet != name {
			fmt.Println(ui.Hint("Sign with it: abistudio config set-wallet " + name))
		}
		return nil
	},
}

// readSecret reads one line without echo from a terminal, or plainly from
// piped stdin.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return "", errors.New("no key given")
	}
	return line, nil
}

func init() {
	configSetRPCCmd.Flags().BoolVar(&configRPCRemove, "remove", false, "remove the URL instead of adding it")
	configCmd.AddCommand(configShowCmd, configSetChainCmd, configSetRPCCmd, configSetWalletCmd, configImportKeyCmd)
}
