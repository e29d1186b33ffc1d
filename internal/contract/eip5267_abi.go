package contract

// EIP-5267 lets a contract describe its EIP-712 signing domain.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "eip5267",
		Name:        "EIP-5267 Domain Retrieval",
		Description: "eip712Domain() of any contract that signs typed data (permit tokens, Safe, ...).",
		ABI:         eip5267ABI,
	})
}

const eip5267ABI = `[
  {"type":"function","name":"eip712Domain","inputs":[],"outputs":[
    {"name":"fields","type":"bytes1"},
    {"name":"name","type":"string"},
    {"name":"version","type":"string"},
    {"name":"chainId","type":"uint256"},
    {"name":"verifyingContract","type":"address"},
    {"name":"salt","type":"bytes32"},
    {"name":"extensions","type":"uint256[]"}
  ],"stateMutability":"view"},
  {"type":"function","name":"DOMAIN_SEPARATOR","inputs":[],"outputs":[{"name":"","type":"bytes32"}],"stateMutability":"view"},
  {"type":"function","name":"nonces","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"event","name":"EIP712DomainChanged","anonymous":false,"inputs":[]}
]`
