// Package render turns decoded contract return values into a display tree.
package render

import (
	"math/big"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/shopspring/decimal"
)

// Kind tags a Value.
type Kind int

const (
	Absent Kind = iota
	Primitive
	Sequence
	Struct
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Primitive:
		return "primitive"
	case Sequence:
		return "sequence"
	case Struct:
		return "struct"
	}
	return "unknown"
}

// Value is a decoded result with the ABI type it was declared as, when known.
type Value struct {
	Kind   Kind
	Type   string
	Raw    any // Primitive payload
	Items  []Value
	Fields []Field
}

// Field is one named member of a Struct value.
type Field struct {
	Key   string
	Value Value
}

// Field returns the member called key.
func (v Value) Field(key string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// FromOutputs decodes the unpacked return values of a function in a single
// pass guided by its declared outputs. A single output is unwrapped. Several
// outputs become a Struct when every one of them is named and a Sequence
// otherwise.
func FromOutputs(outputs []contract.FunctionOutput, vals []any) Value {
	switch {
	case len(vals) == 0:
		return Value{Kind: Absent}
	case len(vals) == 1 && len(outputs) == 1:
		return fromTyped(outputs[0], vals[0])
	case len(vals) == len(outputs) && allNamed(outputs):
		v := Value{Kind: Struct}
		for i, out := range outputs {
			v.Fields = append(v.Fields, Field{Key: out.Name, Value: fromTyped(out, vals[i])})
		}
		return v
	}

	v := Value{Kind: Sequence, Items: []Value{}}
	for i, val := range vals {
		if i < len(outputs) {
			v.Items = append(v.Items, fromTyped(outputs[i], val))
		} else {
			v.Items = append(v.Items, FromAny(val))
		}
	}
	return v
}

func fromTyped(out contract.FunctionOutput, val any) Value {
	if val == nil {
		return Value{Kind: Absent, Type: out.Type}
	}
	rv := reflect.ValueOf(val)

	if elem, ok := elementOf(out); ok {
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return Value{Kind: Primitive, Type: out.Type, Raw: val}
		}
		v := Value{Kind: Sequence, Type: out.Type, Items: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			v.Items = append(v.Items, fromTyped(elem, rv.Index(i).Interface()))
		}
		return v
	}

	if out.Type == "tuple" {
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || rv.NumField() != len(out.Components) {
			return FromAny(val)
		}
		if allNamed(out.Components) {
			v := Value{Kind: Struct, Type: out.Type}
			for i, c := range out.Components {
				v.Fields = append(v.Fields, Field{Key: c.Name, Value: fromTyped(c, rv.Field(i).Interface())})
			}
			return v
		}
		v := Value{Kind: Sequence, Type: out.Type, Items: make([]Value, 0, len(out.Components))}
		for i, c := range out.Components {
			v.Items = append(v.Items, fromTyped(c, rv.Field(i).Interface()))
		}
		return v
	}

	return Value{Kind: Primitive, Type: out.Type, Raw: val}
}

// elementOf strips the last array dimension of an array-typed output.
func elementOf(out contract.FunctionOutput) (contract.FunctionOutput, bool) {
	if !strings.HasSuffix(out.Type, "]") {
		return out, false
	}
	i := strings.LastIndex(out.Type, "[")
	if i < 0 {
		return out, false
	}
	elem := out
	elem.Name = ""
	elem.Type = out.Type[:i]
	return elem, true
}

func allNamed(outs []contract.FunctionOutput) bool {
	if len(outs) == 0 {
		return false
	}
	for _, o := range outs {
		if o.Name == "" {
			return false
		}
	}
	return true
}

// FromAny builds an untyped Value from runtime data: maps become Structs
// (keys sorted), slices and arrays become Sequences, byte strings and
// everything else become Primitives.
func FromAny(val any) Value {
	if val == nil {
		return Value{Kind: Absent}
	}
	if v, ok := val.(Value); ok {
		return v
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return Value{Kind: Absent}
	}
	if rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Struct && !isPrimitiveType(rv.Type()) {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		v := Value{Kind: Struct}
		for _, k := range keys {
			v.Fields = append(v.Fields, Field{Key: k, Value: FromAny(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())})
		}
		return v

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		v := Value{Kind: Sequence, Items: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			v.Items = append(v.Items, FromAny(rv.Index(i).Interface()))
		}
		return v

	case reflect.Struct:
		if isPrimitiveType(rv.Type()) {
			break
		}
		v := Value{Kind: Struct}
		for i := 0; i < rv.NumField(); i++ {
			sf := rv.Type().Field(i)
			if !sf.IsExported() {
				continue
			}
			v.Fields = append(v.Fields, Field{Key: sf.Name, Value: FromAny(rv.Field(i).Interface())})
		}
		return v
	}
	return Value{Kind: Primitive, Raw: val}
}

var primitiveTypes = map[reflect.Type]bool{
	reflect.TypeOf(big.Int{}):         true,
	reflect.TypeOf(&big.Int{}):        true,
	reflect.TypeOf(time.Time{}):       true,
	reflect.TypeOf(decimal.Decimal{}): true,
}

// isPrimitiveType reports struct types that print as a single value.
func isPrimitiveType(t reflect.Type) bool { return primitiveTypes[t] }
