// Package api is the high-level entry point for signing transparent
// transactions.
//
// The core operations:
//
//  1. SignTransaction - signs every input of an unsigned transaction
//  2. SignInput - signs one input (single-step primitive)
//  3. CalculateTxid - transaction ID of raw transaction hex
//  4. DecodeTransaction - structured view of raw transaction hex
//  5. SignWithWallet - SignTransaction with the key pulled from a keystore
//  6. ImportWallet - stores a WIF and its derived address
//
// The signing pipeline never retries: every error it can return indicates
// malformed input or an unrecoverable cryptographic failure, not a
// transient condition.
package api

import (
	"fmt"
	"time"

	"github.com/suffix-labs/zcash-tsign/pkg/chain"
	"github.com/suffix-labs/zcash-tsign/pkg/crypto"
	"github.com/suffix-labs/zcash-tsign/pkg/keystore"
	"github.com/suffix-labs/zcash-tsign/pkg/signer"
	"github.com/suffix-labs/zcash-tsign/pkg/tx"
)

// SignTransaction signs every transparent input of unsignedTxHex with the
// WIF-encoded key, using one InputDescriptor per input in wire order.
// Returns the signed hex and its transaction ID.
func SignTransaction(params *chain.Params, wif, unsignedTxHex string, inputs []signer.InputDescriptor) (*signer.Result, error) {
	return signer.New(params).SignTransaction(wif, unsignedTxHex, inputs)
}

// SignInput signs a single input with SIGHASH_ALL and returns the updated
// transaction hex.
func SignInput(params *chain.Params, wif, txHex string, inputIndex int, prevScriptHex string, amount int64) (string, error) {
	return signer.New(params).SignInput(wif, txHex, inputIndex, prevScriptHex, amount, crypto.SighashAll)
}

// CalculateTxid computes the display transaction ID of raw transaction hex.
func CalculateTxid(txHex string) (string, error) {
	return tx.TxIDHex(txHex)
}

// DecodeTransaction parses raw transaction hex into its structured form.
func DecodeTransaction(txHex string) (*tx.Transaction, error) {
	return tx.ParseHex(txHex)
}

// SignWithWallet retrieves the named wallet's key from the store and signs
// with it. A missing wallet surfaces as *keystore.KeyNotFoundError. The key
// is held only for the duration of this call.
func SignWithWallet(store *keystore.Store, walletName, password string, unsignedTxHex string, inputs []signer.InputDescriptor, params *chain.Params) (*signer.Result, error) {
	wif, err := store.RetrieveWIF(walletName, password)
	if err != nil {
		return nil, err
	}
	return SignTransaction(params, wif, unsignedTxHex, inputs)
}

// NewWallet generates a fresh random key, stores it under the given name, and
// returns the record with its derived P2PKH address.
func NewWallet(store *keystore.Store, name, password string, params *chain.Params) (*keystore.WalletRecord, error) {
	wif, err := crypto.GenerateWIF(params.WIFPrefix)
	if err != nil {
		return nil, err
	}
	return ImportWallet(store, name, wif, password, params)
}

// ImportWallet validates a WIF, derives its P2PKH address, and stores both
// under the given name.
func ImportWallet(store *keystore.Store, name, wif, password string, params *chain.Params) (*keystore.WalletRecord, error) {
	priv, err := crypto.DecodeWIF(wif, params.WIFPrefix)
	if err != nil {
		return nil, fmt.Errorf("decoding WIF: %w", err)
	}
	defer priv.Zero()

	pubKey, err := crypto.Secp256k1Signer{}.DerivePublicKey(priv.Bytes(), priv.Compressed())
	if err != nil {
		return nil, err
	}

	rec := keystore.WalletRecord{
		Name:      name,
		Address:   crypto.PublicKeyAddress(pubKey, params),
		Network:   params.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveWallet(rec, wif, password); err != nil {
		return nil, err
	}
	return &rec, nil
}
