package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/crypto/sha3"
)

// Mutability is a function's declared state mutability.
type Mutability string

const (
	View       Mutability = "view"
	Pure       Mutability = "pure"
	NonPayable Mutability = "nonpayable"
	Payable    Mutability = "payable"
)

// FunctionInput is one declared parameter of a function.
type FunctionInput struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	InternalType string          `json:"internalType,omitempty"`
	Components   []FunctionInput `json:"components,omitempty"`
}

// FunctionOutput is one declared return value. Components are set for tuples.
type FunctionOutput struct {
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	InternalType string           `json:"internalType,omitempty"`
	Components   []FunctionOutput `json:"components,omitempty"`
}

// FunctionDescriptor is a callable function taken from an ABI.
type FunctionDescriptor struct {
	Name       string           `json:"name"`
	Kind       string           `json:"type"`
	Inputs     []FunctionInput  `json:"inputs"`
	Outputs    []FunctionOutput `json:"outputs,omitempty"`
	Mutability Mutability       `json:"stateMutability"`

	key string
}

// Key is the name the function is addressed by in a Catalog and InputTable:
// its plain name, or its signature when the name is overloaded.
func (f *FunctionDescriptor) Key() string {
	if f.key == "" {
		return f.Name
	}
	return f.key
}

// IsRead reports whether the function can be served by a stateless call.
func (f *FunctionDescriptor) IsRead() bool {
	return f.Mutability == View || f.Mutability == Pure
}

// IsPayable reports whether the function accepts a native value.
func (f *FunctionDescriptor) IsPayable() bool { return f.Mutability == Payable }

// InputName returns the name of the i-th input. Unnamed inputs have already
// been given their param_<i> name by Parse.
func (f *FunctionDescriptor) InputName(i int) string {
	if n := f.Inputs[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("param_%d", i)
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (f *FunctionDescriptor) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		types[i] = canonicalType(in)
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector.
func (f *FunctionDescriptor) Selector() [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(f.Signature()))
	var sel [4]byte
	copy(sel[:], h.Sum(nil))
	return sel
}

// SelectorHex returns the selector as 0x-prefixed hex.
func (f *FunctionDescriptor) SelectorHex() string {
	sel := f.Selector()
	return "0x" + hex.EncodeToString(sel[:])
}

// canonicalType expands tuple types into their component list, keeping any
// array suffix: tuple[2] -> (uint256,address)[2].
func canonicalType(in FunctionInput) string {
	if !strings.HasPrefix(in.Type, "tuple") {
		return in.Type
	}
	parts := lo.Map(in.Components, func(c FunctionInput, _ int) string { return canonicalType(c) })
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(in.Type, "tuple")
}

// Catalog is the ordered set of functions parsed from one ABI.
type Catalog struct {
	fns    []*FunctionDescriptor
	byKey  map[string]int
	bySig  map[string]int
	byName map[string][]int
}

func newCatalog(fns []*FunctionDescriptor) *Catalog {
	c := &Catalog{
		fns:    fns,
		byKey:  make(map[string]int, len(fns)),
		bySig:  make(map[string]int, len(fns)),
		byName: make(map[string][]int),
	}
	for i, fn := range fns {
		c.byName[fn.Name] = append(c.byName[fn.Name], i)
	}
	for i, fn := range fns {
		if len(c.byName[fn.Name]) > 1 {
			fn.key = fn.Signature()
		} else {
			fn.key = fn.Name
		}
		if _, dup := c.byKey[fn.key]; !dup {
			c.byKey[fn.key] = i
		}
		if _, dup := c.bySig[fn.Signature()]; !dup {
			c.bySig[fn.Signature()] = i
		}
	}
	return c
}

// Len returns the number of functions in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fns)
}

// Functions returns the functions in ABI order.
func (c *Catalog) Functions() []*FunctionDescriptor {
	if c == nil {
		return nil
	}
	return c.fns
}

// Keys returns the catalog keys in ABI order.
func (c *Catalog) Keys() []string {
	return lo.Map(c.Functions(), func(f *FunctionDescriptor, _ int) string { return f.Key() })
}

// Lookup finds a function by key, plain name or full signature.
func (c *Catalog) Lookup(ref string) (*FunctionDescriptor, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, ref)
	}
	if i, ok := c.byKey[ref]; ok {
		return c.fns[i], nil
	}
	if i, ok := c.bySig[strings.ReplaceAll(ref, " ", "")]; ok {
		return c.fns[i], nil
	}
	if idx := c.byName[ref]; len(idx) > 1 {
		sigs := lo.Map(idx, func(i int, _ int) string { return c.fns[i].Signature() })
		return nil, fmt.Errorf("%w: %s, use one of %s", ErrAmbiguousFunction, ref, strings.Join(sigs, ", "))
	}
	if hints := c.Suggest(ref); len(hints) > 0 {
		return nil, fmt.Errorf("%w: %s (did you mean %s?)", ErrFunctionNotFound, ref, strings.Join(hints, ", "))
	}
	return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, ref)
}

// Suggest returns up to three catalog keys that fuzzily match ref, best first.
func (c *Catalog) Suggest(ref string) []string {
	if ref == "" || c.Len() == 0 {
		return nil
	}
	matches := fuzzy.Find(strings.ToLower(ref), lo.Map(c.Keys(), func(k string, _ int) string { return strings.ToLower(k) }))
	keys := c.Keys()
	out := lo.Map(matches, func(m fuzzy.Match, _ int) string { return keys[m.Index] })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// InputRow holds the raw text of each input of one function, by input name.
type InputRow map[string]string

// InputTable holds one InputRow per catalog key.
type InputTable map[string]InputRow

// abiEntry is the on-the-wire shape of an ABI function entry, including the
// pre-0.6 constant/payable flags.
type abiEntry struct {
	Type            string           `json:"type"`
	Name            string           `json:"name"`
	Inputs          []FunctionInput  `json:"inputs"`
	Outputs         []FunctionOutput `json:"outputs"`
	StateMutability string           `json:"stateMutability"`
	Constant        bool             `json:"constant"`
	Payable         bool             `json:"payable"`
}

func (e abiEntry) mutability() (Mutability, error) {
	switch m := Mutability(e.StateMutability); {
	case m == View || m == Pure || m == NonPayable || m == Payable:
		return m, nil
	case m != "":
		return "", fmt.Errorf("unknown stateMutability %q", e.StateMutability)
	case e.Constant:
		return View, nil
	case e.Payable:
		return Payable, nil
	default:
		return NonPayable, nil
	}
}

// nameInputs gives every input a distinct name. Declared names are kept;
// an unnamed input becomes param_<index>, suffixed while that is taken.
// A repeated declared name is suffixed the same way.
func nameInputs(ins []FunctionInput) {
	declared := make(map[string]bool, len(ins))
	for _, in := range ins {
		if in.Name != "" {
			declared[in.Name] = true
		}
	}
	seen := make(map[string]bool, len(ins))
	for j := range ins {
		base := ins[j].Name
		name := base
		if base == "" {
			base = fmt.Sprintf("param_%d", j)
			name = base
			for k := 1; declared[name] || seen[name]; k++ {
				name = fmt.Sprintf("%s_%d", base, k)
			}
		} else {
			for k := 1; seen[name]; k++ {
				name = fmt.Sprintf("%s_%d", base, k)
			}
		}
		seen[name] = true
		ins[j].Name = name
	}
}

// Parse validates raw ABI JSON and returns the catalog of its functions with a
// fresh input table. Entries that are not functions are dropped. Unnamed
// inputs are named param_<index>; input names within a function are unique.
func Parse(raw string) (*Catalog, InputTable, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyInput
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if _, ok := doc.([]any); !ok {
		return nil, nil, ErrNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	var fns []*FunctionDescriptor
	for i, item := range items {
		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(item, &head) != nil || head.Type != "function" {
			continue
		}

		var e abiEntry
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedJSON, i, err)
		}
		if e.Name == "" {
			return nil, nil, fmt.Errorf("%w: entry %d: function has no name", ErrMalformedJSON, i)
		}

		m, err := e.mutability()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedJSON, i, err)
		}

		fn := &FunctionDescriptor{
			Name:       e.Name,
			Kind:       e.Type,
			Inputs:     e.Inputs,
			Outputs:    e.Outputs,
			Mutability: m,
		}
		nameInputs(fn.Inputs)
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		return nil, nil, ErrNoFunctions
	}

	cat := newCatalog(fns)
	return cat, newInputTable(cat), nil
}

func newInputTable(c *Catalog) InputTable {
	table := make(InputTable, c.Len())
	for _, fn := range c.Functions() {
		if _, ok := table[fn.Key()]; ok {
			continue
		}
		row := make(InputRow, len(fn.Inputs))
		for _, in := range fn.Inputs {
			row[in.Name] = ""
		}
		table[fn.Key()] = row
	}
	return table
}
