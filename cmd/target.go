package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/dispatch"
	"github.com/Mohsinsiddi/abistudio/internal/ens"
	"github.com/Mohsinsiddi/abistudio/internal/rpc"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// abiFlags selects where a command reads its ABI from. Exactly one source
// must be given.
type abiFlags struct {
	file     string
	builtin  string
	contract string
}

func (f *abiFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "abi", "", "ABI JSON file or Hardhat/Foundry artifact")
	cmd.Flags().StringVar(&f.builtin, "builtin", "", "bundled ABI id (erc20, eip5267)")
	cmd.Flags().StringVar(&f.contract, "contract", "", "bookmarked contract name")
	cmd.MarkFlagsMutuallyExclusive("abi", "builtin", "contract")
}

func (f *abiFlags) empty() bool {
	return f.file == "" && f.builtin == "" && f.contract == ""
}

// loadedABI is an ABI together with where it came from.
type loadedABI struct {
	text  string
	title string
	entry *contract.Entry // set for bookmarks
}

// load reads the selected ABI. chainRef narrows bookmark lookup when a name
// is bookmarked on several chains.
func (f *abiFlags) load(chainRef string) (*loadedABI, error) {
	switch {
	case f.file != "":
		text, err := contract.LoadABIFile(f.file)
		if err != nil {
			return nil, err
		}
		return &loadedABI{text: text, title: f.file}, nil

	case f.builtin != "":
		b, ok := contract.GetBuiltin(f.builtin)
		if !ok {
			ids := lo.Map(contract.AllBuiltins(), func(b contract.BuiltinKind, _ int) string { return b.ID })
			return nil, fmt.Errorf("unknown built-in %q (available: %s)", f.builtin, strings.Join(ids, ", "))
		}
		return &loadedABI{text: b.ABI, title: b.Name}, nil

	case f.contract != "":
		e, err := findBookmark(f.contract, chainRef)
		if err != nil {
			return nil, err
		}
		text, err := e.ABIText()
		if err != nil {
			return nil, err
		}
		return &loadedABI{text: text, title: e.Name, entry: e}, nil
	}
	return nil, errors.New("no ABI given: pass --abi <file>, --builtin <id> or --contract <name>")
}

func contractRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.ContractsPath())
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

func findBookmark(name, chainRef string) (*contract.Entry, error) {
	reg, err := contractRegistry()
	if err != nil {
		return nil, err
	}
	if chainRef != "" {
		c, err := resolveChain(chainRef)
		if err != nil {
			return nil, err
		}
		return reg.Get(name, c.Name)
	}
	entries := reg.GetByName(name)
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("%w: %s (run `abistudio contract list`)", contract.ErrContractNotFound, name)
	case 1:
		return entries[0], nil
	}
	nets := lo.Map(entries, func(e *contract.Entry, _ int) string { return e.Network })
	return nil, fmt.Errorf("contract %q is bookmarked on %s; pass --chain", name, strings.Join(nets, ", "))
}

// chainRegistry returns the built-in chains merged with the user's overlay
// file, when there is one.
func chainRegistry() (*chain.Registry, error) {
	reg := chain.NewRegistry()
	if cfg.ChainsFile == "" {
		return reg, nil
	}
	if _, err := os.Stat(cfg.ChainsFile); err != nil {
		return reg, nil
	}
	if err := reg.LoadOverlay(cfg.ChainsFile); err != nil {
		return nil, err
	}
	return reg, nil
}

// resolveChain accepts a chain id or slug. An empty ref means the
// configured default chain.
func resolveChain(ref string) (*chain.Chain, error) {
	if ref == "" {
		ref = cfg.DefaultChain
	}
	reg, err := chainRegistry()
	if err != nil {
		return nil, err
	}
	c, err := reg.Lookup(ref)
	if err != nil {
		return nil, fmt.Errorf("%w (run `abistudio chains` to see all)", err)
	}
	return c, nil
}

// rpcCandidates returns the URLs to probe for c and how to choose among
// them. An explicit URL or configured overrides are tried in order; the
// registry's public endpoints race for the fastest.
func rpcCandidates(c *chain.Chain, explicit string, overrides []string) ([]string, rpc.Algorithm) {
	if explicit != "" {
		return []string{explicit}, rpc.AlgorithmFailover
	}
	if len(overrides) > 0 {
		return lo.Uniq(append(slices.Clone(overrides), c.RPCURLs...)), rpc.AlgorithmFailover
	}
	return c.RPCURLs, rpc.AlgorithmFastest
}

// dial connects to a healthy endpoint serving c.
func dial(ctx context.Context, c *chain.Chain, explicit string) (*chain.EVMClient, error) {
	urls, algo := rpcCandidates(c, explicit, cfg.GetRPCs(c.Name))
	if len(urls) == 0 {
		return nil, fmt.Errorf("no RPC known for %s; pass --rpc or run `abistudio config set-rpc %s <url>`", c.Name, c.Name)
	}
	ep, err := rpc.Pick(ctx, urls, c.ID, algo, rpc.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("chain", c.Name).Str("rpc", ep.URL).Dur("latency", ep.Latency).Uint64("block", ep.BlockNumber).Msg("rpc selected")
	return chain.Dial(ctx, ep.URL)
}

// openSigner returns the configured signing key, or nil when no wallet is
// set up. Reads never need one.
func openSigner() (*wallet.Signer, error) {
	if cfg.Wallet == "" && os.Getenv(wallet.EnvPrivateKey) == "" {
		return nil, nil
	}
	ks, err := wallet.DefaultKeystore(cfg.Dir())
	if err != nil {
		return nil, err
	}
	s, err := wallet.Open(ks, cfg.Wallet)
	if errors.Is(err, wallet.ErrNoWallet) {
		return nil, nil
	}
	return s, err
}

// targetFlags are the flags shared by commands that talk to a contract.
type targetFlags struct {
	abiFlags
	address string
	chain   string
	rpc     string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	f.abiFlags.register(cmd)
	cmd.Flags().StringVar(&f.address, "address", "", "contract address or ENS name (default: the bookmark's)")
	cmd.Flags().StringVar(&f.chain, "chain", "", "chain id or slug (default: config)")
	cmd.Flags().StringVar(&f.rpc, "rpc", "", "RPC URL, overriding the registry and config")
}

// workspace is a loaded ABI bound to a contract on a connected chain.
type workspace struct {
	title   string
	session *contract.Session
	chain   *chain.Chain
	address string
	client  *chain.EVMClient
	signer  *wallet.Signer
}

// prepareWorkspace loads the ABI and settles the chain and contract
// address. It never touches the network, so a bad target fails before any
// RPC is probed.
func prepareWorkspace(f *targetFlags) (*workspace, error) {
	abi, err := f.load(f.chain)
	if err != nil {
		return nil, err
	}
	ws := &workspace{title: abi.title, session: contract.NewSession(), address: f.address}
	if err := ws.session.Load(abi.text); err != nil {
		return nil, err
	}

	chainRef := f.chain
	if abi.entry != nil {
		if chainRef == "" {
			chainRef = abi.entry.Network
		}
		if ws.address == "" {
			ws.address = abi.entry.Address
		}
	}
	if ws.chain, err = resolveChain(chainRef); err != nil {
		return nil, err
	}

	// ENS names are checked once resolved.
	if !ens.IsName(ws.address) {
		if _, err := ws.target().Validate(); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// connect dials the chain and resolves an ENS contract address.
func (ws *workspace) connect(ctx context.Context, explicitRPC string) error {
	var err error
	if ws.client, err = dial(ctx, ws.chain, explicitRPC); err != nil {
		return err
	}
	if ens.IsName(ws.address) {
		if err := ws.resolveName(ctx); err != nil {
			ws.Close()
			return err
		}
	}
	return nil
}

func openWorkspace(ctx context.Context, f *targetFlags, withSigner bool) (*workspace, error) {
	ws, err := prepareWorkspace(f)
	if err != nil {
		return nil, err
	}
	if withSigner {
		if ws.signer, err = openSigner(); err != nil {
			return nil, err
		}
	}
	if err := ws.connect(ctx, f.rpc); err != nil {
		return nil, err
	}
	return ws, nil
}

// check runs the offline part of dispatch validation for fn: the signer
// requirement and argument coercion.
func (ws *workspace) check(fn *contract.FunctionDescriptor, row contract.InputRow) error {
	var accounts dispatch.AccountSource
	if ws.signer != nil {
		accounts = ws.signer
	}
	if _, err := dispatch.Sender(fn, accounts); err != nil {
		return err
	}
	_, err := contract.Coerce(fn, row)
	return err
}

func (ws *workspace) target() dispatch.Target {
	return dispatch.Target{Address: ws.address, Chain: ws.chain}
}

// resolveName replaces an ENS name given as the contract address with the
// address it points to.
func (ws *workspace) resolveName(ctx context.Context) error {
	if !ens.Supported(ws.chain.ID) {
		return fmt.Errorf("%s: %w (%s)", ws.address, ens.ErrUnsupportedChain, ws.chain.Label())
	}
	addr, err := ens.NewResolver(ws.client).Resolve(ctx, ws.address)
	if err != nil {
		return err
	}
	log.Debug().Str("name", ws.address).Str("address", addr.Hex()).Msg("ens resolved")
	ws.address = addr.Hex()
	return nil
}

func (ws *workspace) Close() {
	if ws.client != nil {
		ws.client.Close()
		ws.client = nil
	}
}

// controller wires the workspace's transport and signer into a dispatch
// controller.
func (ws *workspace) controller(opts ...dispatch.Option) *dispatch.Controller {
	var (
		writer   dispatch.Writer
		accounts dispatch.AccountSource
	)
	if ws.signer != nil {
		writer = contract.NewSender(ws.client, ws.signer, big.NewInt(ws.chain.ID), cfg.PollInterval)
		accounts = ws.signer
	}
	opts = append([]dispatch.Option{
		dispatch.WithLogger(log),
		dispatch.WithReceiptTimeout(cfg.ReceiptTimeout),
	}, opts...)
	return dispatch.NewController(ws.target(), contract.NewCaller(ws.client), writer, accounts, nil, opts...)
}

// errorLine formats a command error for the terminal.
func errorLine(err error) string {
	line := ui.Err(err.Error())
	switch {
	case errors.Is(err, dispatch.ErrNoSigner):
		line += "\n" + ui.Hint("Import a key with: abistudio config import-key <name>, or set "+wallet.EnvPrivateKey)
	case errors.Is(err, rpc.ErrNoHealthyRPC):
		line += "\n" + ui.Hint("Pass --rpc <url> or add one with: abistudio config set-rpc <chain> <url>")
	}
	return line
}
