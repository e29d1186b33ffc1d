package chain

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// NativeCurrency describes the gas token of a chain.
type NativeCurrency struct {
	Name     string `json:"name"     toml:"name"`
	Symbol   string `json:"symbol"   toml:"symbol"`
	Decimals int    `json:"decimals" toml:"decimals"`
}

// Chain holds all metadata for a single EVM chain.
type Chain struct {
	ID             int64          `json:"id"           toml:"id"`
	Name           string         `json:"name"         toml:"name"` // slug, e.g. "base-sepolia"
	DisplayName    string         `json:"display_name" toml:"display_name"`
	NativeCurrency NativeCurrency `json:"native_currency" toml:"native_currency"`
	RPCURLs        []string       `json:"rpc_urls"     toml:"rpc_urls"`
	// Etherscan-compatible API endpoint used to fetch verified ABIs.
	ExplorerAPI string `json:"explorer_api,omitempty" toml:"explorer_api"`
	Testnet     bool   `json:"testnet"                toml:"testnet"`
}

// DefaultRPC returns the first registered RPC URL, or "" when none is known.
func (c *Chain) DefaultRPC() string {
	if len(c.RPCURLs) == 0 {
		return ""
	}
	return c.RPCURLs[0]
}

// Label renders the chain for prompts and tables: "Base Sepolia (84532)".
func (c *Chain) Label() string {
	return fmt.Sprintf("%s (%d)", c.DisplayName, c.ID)
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]int
	byID   map[int64]int
}

// NewRegistry creates the registry of built-in chains.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset(allChains())
	return r
}

func (r *Registry) reset(chains []Chain) {
	r.chains = chains
	r.byName = make(map[string]int, len(chains))
	r.byID = make(map[int64]int, len(chains))
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = i
		r.byID[c.ID] = i
	}
}

// All returns every chain in the registry, ordered by insertion.
func (r *Registry) All() []Chain {
	return r.chains
}

// Resolve finds a chain by its numeric chain ID.
func (r *Registry) Resolve(id int64) (*Chain, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrChainNotFound, id)
	}
	return &r.chains[i], nil
}

// GetByName finds a chain by its slug name (e.g. "base", "ethereum").
func (r *Registry) GetByName(name string) (*Chain, error) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, name)
	}
	return &r.chains[i], nil
}

// Lookup accepts either a numeric chain ID or a slug.
func (r *Registry) Lookup(ref string) (*Chain, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return r.Resolve(id)
	}
	return r.GetByName(ref)
}

// Add inserts a chain, replacing any chain with the same ID.
func (r *Registry) Add(c Chain) error {
	if c.ID <= 0 {
		return fmt.Errorf("chain %q: id must be positive", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("chain %d: name is required", c.ID)
	}
	c.Name = strings.ToLower(c.Name)
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	if c.NativeCurrency.Decimals == 0 {
		c.NativeCurrency.Decimals = 18
	}

	chains := append([]Chain(nil), r.chains...)
	if i, ok := r.byID[c.ID]; ok {
		chains[i] = c
	} else {
		chains = append(chains, c)
	}
	r.reset(chains)
	return nil
}

// overlayFile is the TOML layout accepted by LoadOverlay:
//
//	[[chain]]
//	id = 31337
//	name = "anvil"
//	rpc_urls = ["http://127.0.0.1:8545"]
type overlayFile struct {
	Chains []Chain `toml:"chain"`
}

// LoadOverlay merges user-defined chains from a TOML file into the registry.
// RPC URLs are expanded against the environment so API keys can stay in .env.
func (r *Registry) LoadOverlay(path string) error {
	var f overlayFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("parsing chain overlay %s: %w", path, err)
	}
	for _, c := range f.Chains {
		for i, u := range c.RPCURLs {
			c.RPCURLs[i] = os.ExpandEnv(u)
		}
		if err := r.Add(c); err != nil {
			return fmt.Errorf("chain overlay %s: %w", path, err)
		}
	}
	return nil
}

// Filter returns the chains matching testnet, sorted by ID.
func (r *Registry) Filter(testnet bool) []Chain {
	var out []Chain
	for _, c := range r.chains {
		if c.Testnet == testnet {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- chain data ---

var eth = NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}

func allChains() []Chain {
	return []Chain{
		{
			ID: 1, Name: "ethereum", DisplayName: "Ethereum", NativeCurrency: eth,
			RPCURLs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			ExplorerAPI: "https://eth.blockscout.com/api",
		},
		{
			ID: 11155111, Name: "sepolia", DisplayName: "Sepolia", NativeCurrency: NativeCurrency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			RPCURLs:     []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			ExplorerAPI: "https://eth-sepolia.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 8453, Name: "base", DisplayName: "Base", NativeCurrency: eth,
			RPCURLs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			ExplorerAPI: "https://base.blockscout.com/api",
		},
		{
			ID: 84532, Name: "base-sepolia", DisplayName: "Base Sepolia", NativeCurrency: eth,
			RPCURLs:     []string{"https://sepolia.base.org"},
			ExplorerAPI: "https://base-sepolia.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 137, Name: "polygon", DisplayName: "Polygon", NativeCurrency: NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
			RPCURLs:     []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			ExplorerAPI: "https://polygon.blockscout.com/api",
		},
		{
			ID: 80002, Name: "amoy", DisplayName: "Polygon Amoy", NativeCurrency: NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
			RPCURLs:     []string{"https://rpc-amoy.polygon.technology"},
			ExplorerAPI: "https://polygon-amoy.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 42161, Name: "arbitrum", DisplayName: "Arbitrum One", NativeCurrency: eth,
			RPCURLs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			ExplorerAPI: "https://arbitrum.blockscout.com/api",
		},
		{
			ID: 421614, Name: "arbitrum-sepolia", DisplayName: "Arbitrum Sepolia", NativeCurrency: eth,
			RPCURLs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			ExplorerAPI: "https://arbitrum-sepolia.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 10, Name: "optimism", DisplayName: "OP Mainnet", NativeCurrency: eth,
			RPCURLs:     []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			ExplorerAPI: "https://optimism.blockscout.com/api",
		},
		{
			ID: 11155420, Name: "op-sepolia", DisplayName: "OP Sepolia", NativeCurrency: eth,
			RPCURLs:     []string{"https://sepolia.optimism.io"},
			ExplorerAPI: "https://optimism-sepolia.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 56, Name: "bnb", DisplayName: "BNB Smart Chain", NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18},
			RPCURLs:     []string{"https://bsc-dataseed.binance.org", "https://bsc-rpc.publicnode.com"},
			ExplorerAPI: "https://bsc.blockscout.com/api",
		},
		{
			ID: 97, Name: "bnb-testnet", DisplayName: "BNB Smart Chain Testnet", NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18},
			RPCURLs:     []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
			ExplorerAPI: "https://bsc-testnet.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 43114, Name: "avalanche", DisplayName: "Avalanche C-Chain", NativeCurrency: NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
			RPCURLs:     []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche-c-chain-rpc.publicnode.com"},
			ExplorerAPI: "https://avalanche.blockscout.com/api",
		},
		{
			ID: 43113, Name: "fuji", DisplayName: "Avalanche Fuji", NativeCurrency: NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18},
			RPCURLs:     []string{"https://api.avax-test.network/ext/bc/C/rpc"},
			ExplorerAPI: "https://avalanche-fuji.blockscout.com/api",
			Testnet:     true,
		},
		{
			ID: 59144, Name: "linea", DisplayName: "Linea", NativeCurrency: eth,
			RPCURLs:     []string{"https://rpc.linea.build", "https://linea-rpc.publicnode.com"},
			ExplorerAPI: "https://linea.blockscout.com/api",
		},
		{
			ID: 534352, Name: "scroll", DisplayName: "Scroll", NativeCurrency: eth,
			RPCURLs:     []string{"https://rpc.scroll.io", "https://scroll-rpc.publicnode.com"},
			ExplorerAPI: "https://scroll.blockscout.com/api",
		},
		{
			ID: 31337, Name: "anvil", DisplayName: "Anvil", NativeCurrency: eth,
			RPCURLs: []string{"http://127.0.0.1:8545"},
			Testnet: true,
		},
	}
}
