package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrNoWallet is returned by Open when neither a key in the environment
	// nor a wallet name is configured.
	ErrNoWallet   = errors.New("no wallet configured")
	ErrInvalidKey = errors.New("invalid private key")
)

// Signer signs EVM transactions with a single private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// FromHex creates a signer from a hex private key, with or without 0x.
func FromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Open returns the signer for the configured wallet. A key in
// ABISTUDIO_PRIVATE_KEY wins over the keystore.
func Open(ks KeystoreBackend, name string) (*Signer, error) {
	if k, ok := envKey(); ok {
		return FromHex(k)
	}
	if name == "" {
		return nil, ErrNoWallet
	}
	hexKey, err := ks.Retrieve(RefFor(name))
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	return FromHex(hexKey)
}

// Import validates hexKey and stores it under name. It returns the address
// the key controls.
func Import(ks KeystoreBackend, name, hexKey string) (common.Address, error) {
	s, err := FromHex(hexKey)
	if err != nil {
		return common.Address{}, err
	}
	if _, err := ks.Store(name, hexKey); err != nil {
		return common.Address{}, fmt.Errorf("storing key: %w", err)
	}
	return s.address, nil
}

// Address returns the account the signer controls.
func (s *Signer) Address() common.Address { return s.address }

// Accounts lists the signer's single account.
func (s *Signer) Accounts() []common.Address {
	if s == nil {
		return nil
	}
	return []common.Address{s.address}
}

// SignTx signs tx for chainID with the latest signer the chain supports.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}
