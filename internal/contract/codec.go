package contract

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// Method builds the go-ethereum method for fn.
func Method(fn *FunctionDescriptor) (abi.Method, error) {
	inputs, err := arguments(fn.Inputs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("%s inputs: %w", fn.Name, err)
	}
	outs := make([]FunctionInput, len(fn.Outputs))
	for i, o := range fn.Outputs {
		outs[i] = o.asInput()
	}
	outputs, err := arguments(outs)
	if err != nil {
		return abi.Method{}, fmt.Errorf("%s outputs: %w", fn.Name, err)
	}
	return abi.NewMethod(fn.Name, fn.Name, abi.Function, string(fn.Mutability), fn.IsRead(), fn.IsPayable(), inputs, outputs), nil
}

func arguments(params []FunctionInput) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(params))
	for _, p := range params {
		t, err := abi.NewType(p.Type, p.InternalType, marshaling(p.Components))
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", p.Type, err)
		}
		args = append(args, abi.Argument{Name: p.Name, Type: t})
	}
	return args, nil
}

// marshaling converts tuple components. go-ethereum rejects anonymous tuple
// fields, so unnamed components get a positional name.
func marshaling(cs []FunctionInput) []abi.ArgumentMarshaling {
	if len(cs) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(cs))
	for i, c := range cs {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("field%d", i)
		}
		out[i] = abi.ArgumentMarshaling{
			Name:         name,
			Type:         c.Type,
			InternalType: c.InternalType,
			Components:   marshaling(c.Components),
		}
	}
	return out
}

func (o FunctionOutput) asInput() FunctionInput {
	in := FunctionInput{Name: o.Name, Type: o.Type, InternalType: o.InternalType}
	for _, c := range o.Components {
		in.Components = append(in.Components, c.asInput())
	}
	return in
}

// PackCall encodes a call to fn with args as returned by Coerce. Text
// arguments are converted here: bytes as hex, arrays and tuples as JSON.
func PackCall(fn *FunctionDescriptor, args []any) ([]byte, error) {
	method, err := Method(fn)
	if err != nil {
		return nil, err
	}
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s: got %d arguments, want %d", fn.Key(), len(args), len(method.Inputs))
	}

	vals := make([]any, len(args))
	for i, arg := range args {
		v, err := toABIValue(method.Inputs[i].Type, arg)
		if err != nil {
			return nil, &ArgumentError{
				Field: fn.InputName(i),
				Type:  fn.Inputs[i].Type,
				Value: fmt.Sprint(arg),
				Err:   fmt.Errorf("%w: %v", ErrInvalidArgument, err),
			}
		}
		vals[i] = v.Interface()
	}

	packed, err := method.Inputs.Pack(vals...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", fn.Key(), err)
	}
	return append(method.ID, packed...), nil
}

// UnpackOutputs decodes return data of fn. A function without outputs
// decodes to nil.
func UnpackOutputs(fn *FunctionDescriptor, data []byte) ([]any, error) {
	if len(fn.Outputs) == 0 {
		return nil, nil
	}
	method, err := Method(fn)
	if err != nil {
		return nil, err
	}
	vals, err := method.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", fn.Key(), err)
	}
	return vals, nil
}

// toABIValue converts a coerced argument into the Go value go-ethereum packs
// for t.
func toABIValue(t abi.Type, arg any) (reflect.Value, error) {
	switch v := arg.(type) {
	case *big.Int:
		return intValue(t, v)
	case bool, common.Address:
		return reflect.ValueOf(v), nil
	case string:
		switch t.T {
		case abi.StringTy:
			return reflect.ValueOf(v), nil
		case abi.SliceTy, abi.ArrayTy, abi.TupleTy:
			dec := json.NewDecoder(strings.NewReader(v))
			dec.UseNumber()
			var doc any
			if err := dec.Decode(&doc); err != nil {
				return reflect.Value{}, fmt.Errorf("expected JSON for %s: %v", t, err)
			}
			return fromJSON(t, doc)
		default:
			return fromJSON(t, v)
		}
	default:
		return fromJSON(t, arg)
	}
}

// fromJSON converts a decoded JSON value into a value of t's Go type.
func fromJSON(t abi.Type, doc any) (reflect.Value, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		n, err := ParseInteger(t.String(), scalarText(doc))
		if err != nil {
			return reflect.Value{}, err
		}
		return intValue(t, n)

	case abi.BoolTy:
		switch b := doc.(type) {
		case bool:
			return reflect.ValueOf(b), nil
		case string:
			return reflect.ValueOf(strings.EqualFold(strings.TrimSpace(b), "true")), nil
		}
		return reflect.Value{}, fmt.Errorf("expected bool, got %T", doc)

	case abi.AddressTy:
		addr, err := ValidateAddress(scalarText(doc))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(addr), nil

	case abi.StringTy:
		s, ok := doc.(string)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected string, got %T", doc)
		}
		return reflect.ValueOf(s), nil

	case abi.BytesTy:
		b, err := hexutil.Decode(strings.TrimSpace(scalarText(doc)))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bytes: %v", err)
		}
		return reflect.ValueOf(b), nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(strings.TrimSpace(scalarText(doc)))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("bytes%d: %v", t.Size, err)
		}
		if len(b) > t.Size {
			return reflect.Value{}, fmt.Errorf("bytes%d: got %d bytes", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr, nil

	case abi.SliceTy, abi.ArrayTy:
		items, ok := doc.([]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected JSON array for %s", t)
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			if len(items) != t.Size {
				return reflect.Value{}, fmt.Errorf("%s: got %d elements", t, len(items))
			}
			out = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			v, err := fromJSON(*t.Elem, item)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(v)
		}
		return out, nil

	case abi.TupleTy:
		st := reflect.New(t.TupleType).Elem()
		for i, elem := range t.TupleElems {
			var item any
			switch d := doc.(type) {
			case []any:
				if len(d) != len(t.TupleElems) {
					return reflect.Value{}, fmt.Errorf("tuple: got %d fields, want %d", len(d), len(t.TupleElems))
				}
				item = d[i]
			case map[string]any:
				var ok bool
				if item, ok = d[t.TupleRawNames[i]]; !ok {
					return reflect.Value{}, fmt.Errorf("tuple: missing field %q", t.TupleRawNames[i])
				}
			default:
				return reflect.Value{}, fmt.Errorf("expected JSON array or object for %s", t)
			}
			v, err := fromJSON(*elem, item)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", t.TupleRawNames[i], err)
			}
			st.Field(i).Set(v)
		}
		return st, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported type %s", t)
}

func intValue(t abi.Type, n *big.Int) (reflect.Value, error) {
	if t.T != abi.IntTy && t.T != abi.UintTy {
		return reflect.Value{}, fmt.Errorf("integer given for %s", t)
	}
	target := t.GetType()
	if target == bigIntType {
		return reflect.ValueOf(n), nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(target), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(target), nil
}

func scalarText(doc any) string {
	switch v := doc.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
