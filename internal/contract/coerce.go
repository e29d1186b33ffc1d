package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var errBadChecksum = errors.New("checksum mismatch")

// Coerce turns the raw text of row into the positional argument list of fn.
// Integers become *big.Int, bool becomes bool and address becomes
// common.Address. Every other type is passed through as text and converted
// by PackCall. The first bad input aborts the whole list.
func Coerce(fn *FunctionDescriptor, row InputRow) ([]any, error) {
	args := make([]any, 0, len(fn.Inputs))
	for i, in := range fn.Inputs {
		name := fn.InputName(i)
		text := row[name]
		v, err := coerceValue(in.Type, text)
		if err != nil {
			return nil, &ArgumentError{Field: name, Type: in.Type, Value: text, Err: err}
		}
		args = append(args, v)
	}
	return args, nil
}

func coerceValue(typ, text string) (any, error) {
	switch {
	case strings.HasSuffix(typ, "]"):
		return text, nil
	case isIntegerType(typ):
		return ParseInteger(typ, text)
	case typ == "bool":
		return strings.EqualFold(strings.TrimSpace(text), "true"), nil
	case typ == "address":
		addr, err := ValidateAddress(text)
		if errors.Is(err, errBadChecksum) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAddressArgument, errBadChecksum)
		}
		if err != nil {
			return nil, ErrInvalidAddressArgument
		}
		return addr, nil
	default:
		return text, nil
	}
}

func isIntegerType(typ string) bool {
	return strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int")
}

// integerBits returns the bit width of uint<N>/int<N>, 256 when N is omitted.
func integerBits(typ string) (bits int, signed bool, err error) {
	signed = strings.HasPrefix(typ, "int")
	suffix := strings.TrimPrefix(strings.TrimPrefix(typ, "u"), "int")
	if suffix == "" {
		return 256, signed, nil
	}
	bits, err = strconv.Atoi(suffix)
	if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, false, fmt.Errorf("unsupported integer type %q", typ)
	}
	return bits, signed, nil
}

// ParseInteger parses decimal or 0x-hex text as an integer of type typ and
// checks it fits the declared width. It never falls back to zero.
func ParseInteger(typ, text string) (*big.Int, error) {
	bits, signed, err := integerBits(typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidArgument)
	}
	n, ok := parseDecOrHex(text)
	if !ok {
		return nil, fmt.Errorf("%w: not an integer", ErrInvalidArgument)
	}

	var lower, upper *big.Int
	if signed {
		upper = new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		lower = new(big.Int).Neg(upper)
	} else {
		upper = new(big.Int).Lsh(big.NewInt(1), uint(bits))
		lower = new(big.Int)
	}
	if n.Cmp(lower) < 0 || n.Cmp(upper) >= 0 {
		return nil, fmt.Errorf("%w: out of range for %s", ErrInvalidArgument, typ)
	}
	return n, nil
}

// parseDecOrHex accepts an optional sign followed by decimal digits or a
// 0x-prefixed hex number. Underscores and 0b/0o prefixes are rejected.
func parseDecOrHex(text string) (*big.Int, bool) {
	sign, digits := "", text
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	base := 10
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		base, digits = 16, digits[2:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, false
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, false
	}
	if sign == "-" {
		n.Neg(n)
	}
	return n, true
}

// ValidateAddress checks s is 0x followed by 40 hex digits. Mixed-case input
// must carry a valid EIP-55 checksum.
func ValidateAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if len(s) != 42 || !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	digits := s[2:]
	if digits != strings.ToLower(digits) && digits != strings.ToUpper(digits) && addr.Hex() != s {
		return common.Address{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, errBadChecksum)
	}
	return addr, nil
}
