package contract

import (
	"errors"
	"fmt"
)

// Parse errors. Every one of them wraps ErrParse.
var (
	ErrParse         = errors.New("invalid ABI")
	ErrEmptyInput    = fmt.Errorf("%w: ABI cannot be empty", ErrParse)
	ErrMalformedJSON = fmt.Errorf("%w: malformed JSON", ErrParse)
	ErrNotArray      = fmt.Errorf("%w: ABI must be a JSON array", ErrParse)
	ErrNoFunctions   = fmt.Errorf("%w: no functions found in ABI", ErrParse)
)

// Catalog lookup errors.
var (
	ErrFunctionNotFound  = errors.New("function not found")
	ErrAmbiguousFunction = errors.New("function name is overloaded")
	ErrUnknownInput      = errors.New("unknown input")
)

// Coercion errors. Both wrap ErrCoercion and always arrive inside an
// *ArgumentError naming the field.
var (
	ErrCoercion               = errors.New("bad argument")
	ErrInvalidArgument        = fmt.Errorf("%w: invalid value", ErrCoercion)
	ErrInvalidAddressArgument = fmt.Errorf("%w: invalid address", ErrCoercion)
)

// ErrInvalidAddress is returned by ValidateAddress.
var ErrInvalidAddress = errors.New("invalid address")

// ArgumentError reports a single input that could not be turned into a call
// argument.
type ArgumentError struct {
	Field string
	Type  string
	Value string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("input %q (%s): %v: %q", e.Field, e.Type, e.Err, e.Value)
}

func (e *ArgumentError) Unwrap() error { return e.Err }
