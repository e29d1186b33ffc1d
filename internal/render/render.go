package render

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NodeKind tags a display Node.
type NodeKind int

const (
	Leaf    NodeKind = iota // formatted primitive
	Labeled                 // one named child
	List                    // ordered children
	None                    // no return value
	Empty                   // empty collection
)

// Display texts of the terminal nodes.
const (
	NoValueText = "No return value"
	EmptyText   = "[]"
)

// Node is one element of the display tree.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Label    string   `json:"label,omitempty"`
	Type     string   `json:"type,omitempty"`
	Tag      string   `json:"tag,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// Render turns v into a display tree. outputs are the declared descriptors
// v was decoded against; types carried by v itself take precedence.
func Render(v Value, outputs []contract.FunctionOutput) Node {
	if len(outputs) == 1 && outputs[0].Type == "tuple" && (v.Kind == Struct || v.Kind == Sequence) {
		outputs = outputs[0].Components
	}
	return render(v, outputs)
}

func render(v Value, outputs []contract.FunctionOutput) Node {
	switch v.Kind {
	case Absent:
		return Node{Kind: None, Text: NoValueText}
	case Sequence:
		return renderSequence(v, outputs)
	case Struct:
		// The domain check must run before the generic struct branch.
		if isDomain(v) {
			return renderDomain(v)
		}
		return renderStruct(v, outputs)
	}

	typ := v.Type
	if typ == "" && len(outputs) == 1 {
		typ = outputs[0].Type
	}
	return Node{Kind: Leaf, Type: typ, Text: formatPrimitive(v.Raw, typ)}
}

func renderSequence(v Value, outputs []contract.FunctionOutput) Node {
	if len(v.Items) == 0 {
		return Node{Kind: Empty, Type: v.Type, Text: EmptyText}
	}

	var elem *contract.FunctionOutput
	switch {
	case len(outputs) == 1 && isArray(outputs[0].Type) && (v.Type == "" || v.Type == outputs[0].Type):
		e, _ := elementOf(outputs[0])
		elem = &e
	case isArray(v.Type):
		e, _ := elementOf(contract.FunctionOutput{Type: v.Type})
		elem = &e
	}

	n := Node{Kind: List, Type: v.Type}
	for i, item := range v.Items {
		d := elem
		if d == nil && i < len(outputs) {
			d = &outputs[i]
		}
		n.Children = append(n.Children, render(item, descend(d)))
	}
	return n
}

func renderStruct(v Value, outputs []contract.FunctionOutput) Node {
	n := Node{Kind: List, Type: v.Type}
	i := 0
	for _, f := range v.Fields {
		if isIntegerKey(f.Key) {
			continue
		}
		d := byName(outputs, f.Key)
		if d == nil && i < len(outputs) {
			d = &outputs[i]
		}
		i++

		typ := f.Value.Type
		if typ == "" && d != nil {
			typ = d.Type
		}
		if typ == "" {
			typ = runtimeType(f.Value)
		}
		n.Children = append(n.Children, Node{
			Kind:     Labeled,
			Label:    f.Key,
			Type:     typ,
			Children: []Node{render(f.Value, descend(d))},
		})
	}
	return n
}

// descend returns the descriptors a child decoded against d should see:
// an array keeps its own descriptor, a tuple hands down its components.
func descend(d *contract.FunctionOutput) []contract.FunctionOutput {
	switch {
	case d == nil:
		return nil
	case !isArray(d.Type) && strings.HasPrefix(d.Type, "tuple"):
		return d.Components
	default:
		return []contract.FunctionOutput{*d}
	}
}

func byName(outputs []contract.FunctionOutput, name string) *contract.FunctionOutput {
	for i := range outputs {
		if outputs[i].Name == name {
			return &outputs[i]
		}
	}
	return nil
}

func isArray(typ string) bool { return strings.HasSuffix(typ, "]") }

// isIntegerKey matches the positional aliases array-like decoders add next
// to named fields.
func isIntegerKey(k string) bool {
	_, err := strconv.ParseInt(k, 10, 64)
	return err == nil
}

func runtimeType(v Value) string {
	switch v.Kind {
	case Sequence:
		return "array"
	case Struct:
		return "struct"
	case Absent:
		return ""
	}
	switch v.Raw.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case *big.Int, big.Int:
		return "int"
	case common.Address:
		return "address"
	case []byte:
		return "bytes"
	}
	return fmt.Sprintf("%T", v.Raw)
}

func formatPrimitive(raw any, typ string) string {
	switch {
	case strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int"):
		switch n := raw.(type) {
		case *big.Int:
			return n.String()
		case string:
			return n
		}
		if isIntegerKind(reflect.ValueOf(raw).Kind()) {
			return fmt.Sprint(raw)
		}
	case typ == "bool":
		if b, ok := raw.(bool); ok {
			return strconv.FormatBool(b)
		}
	case typ == "address":
		switch a := raw.(type) {
		case common.Address:
			return a.Hex()
		case string:
			return a
		}
	case strings.HasPrefix(typ, "bytes"):
		if s, ok := bytesHex(raw); ok {
			return s
		}
	case typ == "string":
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return formatRuntime(raw)
}

func formatRuntime(raw any) string {
	switch v := raw.(type) {
	case nil:
		return NoValueText
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	}
	if s, ok := bytesHex(raw); ok {
		return s
	}
	if isIntegerKind(reflect.ValueOf(raw).Kind()) {
		return fmt.Sprint(raw)
	}
	if b, err := json.MarshalIndent(raw, "", "  "); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", raw)
}

// bytesHex hex-encodes byte slices and fixed-size byte arrays.
func bytesHex(raw any) (string, bool) {
	if b, ok := raw.([]byte); ok {
		return hexutil.Encode(b), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b), true
	}
	if s, ok := raw.(string); ok && strings.HasPrefix(s, "0x") {
		return s, true
	}
	return "", false
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
