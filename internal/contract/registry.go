package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
)

// ErrContractNotFound is returned when a bookmark does not exist.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a bookmarked contract: where it lives and the ABI to call it with.
type Entry struct {
	Name    string          `json:"name"`
	Network string          `json:"network"`
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi,omitempty"`
	Builtin string          `json:"builtin,omitempty"`
	Source  string          `json:"source,omitempty"` // file, URL or "explorer"
}

// ABIText returns the ABI JSON of the entry, resolving built-ins.
func (e *Entry) ABIText() (string, error) {
	if e.Builtin != "" {
		b, ok := GetBuiltin(e.Builtin)
		if !ok {
			return "", fmt.Errorf("unknown built-in ABI %q", e.Builtin)
		}
		return b.ABI, nil
	}
	if len(e.ABI) == 0 {
		return "", fmt.Errorf("contract %s has no ABI", e.Name)
	}
	return string(e.ABI), nil
}

// Registry stores contract bookmarks in a JSON file.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by the JSON file at path.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Load reads stored bookmarks. A missing file is an empty registry.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all bookmarks to disk, sorted by key.
func (r *Registry) Save() error {
	entries := lo.Map(r.All(), func(e *Entry, _ int) Entry { return *e })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add validates e and adds or replaces it.
func (r *Registry) Add(e *Entry) error {
	if e.Name == "" || e.Network == "" {
		return errors.New("contract name and network are required")
	}
	addr, err := ValidateAddress(e.Address)
	if err != nil {
		return err
	}
	e.Address = addr.Hex()

	text, err := e.ABIText()
	if err != nil {
		return err
	}
	if _, _, err := Parse(text); err != nil {
		return err
	}
	r.contracts[key(e.Name, e.Network)] = e
	return nil
}

// Get returns a bookmark by name and network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// GetByName returns the bookmarks called name across all networks.
func (r *Registry) GetByName(name string) []*Entry {
	return lo.Filter(r.All(), func(e *Entry, _ int) bool { return e.Name == name })
}

// All returns every bookmark sorted by name then network.
func (r *Registry) All() []*Entry {
	out := lo.Values(r.contracts)
	sort.Slice(out, func(i, j int) bool {
		return key(out[i].Name, out[i].Network) < key(out[j].Name, out[j].Network)
	})
	return out
}

// Remove deletes a bookmark.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

func key(name, network string) string {
	return name + "@" + network
}
