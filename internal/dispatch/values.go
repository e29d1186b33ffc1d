package dispatch

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/render"
)

func primitive(typ string, raw any) render.Value {
	return render.Value{Kind: render.Primitive, Type: typ, Raw: raw}
}

func field(key string, v render.Value) render.Field {
	return render.Field{Key: key, Value: v}
}

// preparedValue describes a simulated transaction. Amounts are formatted in
// the chain's native currency.
func preparedValue(p *contract.PreparedTx, fn *contract.FunctionDescriptor, cur chain.NativeCurrency) render.Value {
	v := render.Value{Kind: render.Struct, Fields: []render.Field{
		field("from", primitive("address", p.From)),
		field("to", primitive("address", p.To)),
		field("value", primitive("string", chain.FormatAmount(p.Value, cur))),
		field("gas", primitive("uint64", p.Gas)),
		field("nonce", primitive("uint64", p.Nonce)),
		field("maxFeePerGas", primitive("string", chain.FormatGwei(p.GasFeeCap))),
		field("maxPriorityFeePerGas", primitive("string", chain.FormatGwei(p.GasTipCap))),
		field("maxCost", primitive("string", chain.FormatAmount(p.MaxCost(), cur))),
		field("data", primitive("bytes", p.Data)),
	}}
	if res := render.FromOutputs(fn.Outputs, p.Result); res.Kind != render.Absent {
		v.Fields = append(v.Fields, field("result", res))
	}
	return v
}

func receiptValue(r *types.Receipt, cur chain.NativeCurrency) render.Value {
	status := "success"
	if r.Status == types.ReceiptStatusFailed {
		status = "reverted"
	}
	v := render.Value{Kind: render.Struct, Fields: []render.Field{
		field("transactionHash", primitive("bytes32", r.TxHash)),
		field("status", primitive("string", status)),
		field("gasUsed", primitive("uint64", r.GasUsed)),
	}}
	if r.BlockNumber != nil {
		v.Fields = append(v.Fields, field("blockNumber", primitive("uint256", new(big.Int).Set(r.BlockNumber))))
	}
	if r.EffectiveGasPrice != nil {
		fee := new(big.Int).Mul(r.EffectiveGasPrice, new(big.Int).SetUint64(r.GasUsed))
		v.Fields = append(v.Fields,
			field("effectiveGasPrice", primitive("string", chain.FormatGwei(r.EffectiveGasPrice))),
			field("fee", primitive("string", chain.FormatAmount(fee, cur))),
		)
	}
	return v
}
