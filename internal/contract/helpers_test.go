package contract_test

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// rpcMock serves a fixed result per JSON-RPC method and records which
// methods were called.
type rpcMock struct {
	mu     sync.Mutex
	calls  []string
	params map[string]json.RawMessage
}

func (m *rpcMock) called(method string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == method {
			return true
		}
	}
	return false
}

func newMockClient(t *testing.T, responses map[string]interface{}) (*chain.EVMClient, *rpcMock) {
	t.Helper()
	mock := &rpcMock{params: map[string]json.RawMessage{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		mock.mu.Lock()
		mock.calls = append(mock.calls, req.Method)
		mock.params[req.Method] = req.Params
		mock.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		result, ok := responses[req.Method]
		switch v := result.(type) {
		case rpcErr:
			resp["error"] = v
		default:
			if ok {
				resp["result"] = v
			} else {
				resp["error"] = rpcErr{Code: -32601, Message: "method not found"}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	c, err := chain.Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, mock
}

// word returns a 32-byte ABI word holding n as hex.
func word(n int64) string {
	return "0x" + strings.Repeat("0", 64-len(big.NewInt(n).Text(16))) + big.NewInt(n).Text(16)
}

// Well-known Anvil test account #0, never fund on mainnet.
const testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type keySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newKeySigner(t *testing.T) *keySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)
	return &keySigner{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

func (s *keySigner) Address() common.Address { return s.addr }

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
}
