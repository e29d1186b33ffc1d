package render

import (
	"strings"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

// TagDomain marks the Node of an EIP-712 domain-separator record.
const TagDomain = "eip712-domain"

// ZeroSalt replaces an all-zero salt.
const ZeroSalt = "0x000...000"

type domainField struct {
	key, label, typ string
}

// Display order of a domain record.
var domainFields = []domainField{
	{"name", "Name", "string"},
	{"version", "Version", "string"},
	{"chainId", "Chain ID", "uint256"},
	{"verifyingContract", "Verifying Contract", "address"},
	{"salt", "Salt", "bytes32"},
	{"extensions", "Extensions", "uint256[]"},
}

var domainRequired = map[string]bool{
	"name": true, "version": true, "chainId": true, "verifyingContract": true, "salt": true,
}

// EIP-5267 eip712Domain() adds these two next to the record.
var domainOptional = map[string]bool{"fields": true, "extensions": true}

// isDomain reports whether v's keys, ignoring integer aliases, are the five
// domain keys plus at most the EIP-5267 extras.
func isDomain(v Value) bool {
	if v.Kind != Struct {
		return false
	}
	seen := map[string]bool{}
	for _, f := range v.Fields {
		switch {
		case isIntegerKey(f.Key):
		case domainRequired[f.Key]:
			seen[f.Key] = true
		case domainOptional[f.Key]:
		default:
			return false
		}
	}
	return len(seen) == len(domainRequired)
}

func renderDomain(v Value) Node {
	n := Node{Kind: List, Tag: TagDomain}
	for _, df := range domainFields {
		val, ok := v.Field(df.key)
		if !ok {
			continue
		}
		child := render(val, []contract.FunctionOutput{{Name: df.key, Type: df.typ}})
		if df.key == "salt" && isZeroHex(child.Text) {
			child.Text = ZeroSalt
		}
		n.Children = append(n.Children, Node{Kind: Labeled, Label: df.label, Type: df.typ, Children: []Node{child}})
	}
	return n
}

func isZeroHex(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "0x") && strings.Trim(s[2:], "0") == ""
}
