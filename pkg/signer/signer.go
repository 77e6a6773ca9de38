// Package signer orchestrates transparent input signing.
//
// A TransactionSigner walks the inputs of an unsigned transaction in order.
// Each step re-parses the hex produced by the previous step, computes that
// input's sighash from its own script code and amount, signs, assembles the
// P2PKH unlocking script, replaces that single input's script, and
// reserializes. Steps never share a parsed transaction, so a failure at
// input k always leaves the caller with the last fully serialized state
// (inputs 0..k-1 signed) rather than a corrupted intermediate.
//
// Signing N inputs costs N parses and serializations of the whole
// transaction. That is the accepted price of keeping every step auditable in
// isolation; do not fold this into in-place mutation without re-checking the
// codec's field-presence invariant.
package signer

import (
	"encoding/hex"
	"fmt"

	"github.com/suffix-labs/zcash-tsign/pkg/chain"
	"github.com/suffix-labs/zcash-tsign/pkg/crypto"
	"github.com/suffix-labs/zcash-tsign/pkg/tx"
)

// InputDescriptor carries the caller-provided UTXO data for one input: the
// locking script of the output being spent and its value. Neither is
// recoverable from the transaction itself.
type InputDescriptor struct {
	PrevScriptHex string // Locking script of the spent output, hex
	Amount        int64  // Value of the spent output in zatoshis
}

// Result is a fully signed transaction.
type Result struct {
	Hex  string // Signed transaction, hex-encoded
	TxID string // Display transaction ID
}

// PartialSignError reports a failure at one input of a multi-input signing
// pass. Hex holds the last fully-consistent serialization: inputs before
// Index are signed, Index and later are untouched.
type PartialSignError struct {
	Index int
	Hex   string
	Err   error
}

func (e *PartialSignError) Error() string {
	return fmt.Sprintf("signing input %d: %v", e.Index, e.Err)
}

func (e *PartialSignError) Unwrap() error { return e.Err }

// TransactionSigner signs transparent inputs for one network.
type TransactionSigner struct {
	params *chain.Params
	engine crypto.Signer
}

// New creates a TransactionSigner backed by the secp256k1 engine.
func New(params *chain.Params) *TransactionSigner {
	return &TransactionSigner{params: params, engine: crypto.Secp256k1Signer{}}
}

// NewWithEngine creates a TransactionSigner with an explicit curve backend.
func NewWithEngine(params *chain.Params, engine crypto.Signer) *TransactionSigner {
	return &TransactionSigner{params: params, engine: engine}
}

// SignTransaction signs every input of unsignedTxHex in descriptor order and
// returns the final hex together with its transaction ID. The WIF-decoded
// key material is zeroed before return on every path.
//
// On failure the returned error is a *PartialSignError carrying the hex of
// the last fully signed state.
func (s *TransactionSigner) SignTransaction(wif, unsignedTxHex string, inputs []InputDescriptor) (*Result, error) {
	priv, err := crypto.DecodeWIF(wif, s.params.WIFPrefix)
	if err != nil {
		return nil, fmt.Errorf("decoding WIF: %w", err)
	}
	defer priv.Zero()

	current := unsignedTxHex
	for i, desc := range inputs {
		next, err := s.signStep(priv, current, i, desc.PrevScriptHex, desc.Amount, crypto.SighashAll)
		if err != nil {
			return nil, &PartialSignError{Index: i, Hex: current, Err: err}
		}
		current = next
	}

	raw, err := hex.DecodeString(current)
	if err != nil {
		return nil, fmt.Errorf("decoding signed transaction: %w", err)
	}
	return &Result{Hex: current, TxID: tx.TxID(raw)}, nil
}

// SignInput signs a single input and returns the updated transaction hex.
// This is the single-step primitive; hashType is accepted rather than
// hardcoded, though SighashAll is the only value the pipeline produces.
func (s *TransactionSigner) SignInput(wif, txHex string, inputIndex int, prevScriptHex string, amount int64, hashType uint32) (string, error) {
	priv, err := crypto.DecodeWIF(wif, s.params.WIFPrefix)
	if err != nil {
		return "", fmt.Errorf("decoding WIF: %w", err)
	}
	defer priv.Zero()

	return s.signStep(priv, txHex, inputIndex, prevScriptHex, amount, hashType)
}

// signStep performs one parse -> sighash -> sign -> rebuild iteration.
func (s *TransactionSigner) signStep(priv *crypto.PrivateKey, txHex string, inputIndex int, prevScriptHex string, amount int64, hashType uint32) (string, error) {
	t, err := tx.ParseHex(txHex)
	if err != nil {
		return "", err
	}

	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return "", &crypto.SighashError{InputIndex: inputIndex, Message: "input index out of bounds"}
	}

	scriptCode, err := hex.DecodeString(prevScriptHex)
	if err != nil {
		return "", fmt.Errorf("decoding previous output script: %w", err)
	}

	digest, err := crypto.SignatureHash(t, s.params.ConsensusBranchID, inputIndex, scriptCode, amount, hashType)
	if err != nil {
		return "", err
	}

	rawSig, err := s.engine.Sign(digest, priv.Bytes())
	if err != nil {
		return "", err
	}

	pubKey, err := s.engine.DerivePublicKey(priv.Bytes(), priv.Compressed())
	if err != nil {
		return "", err
	}

	sigField := append(crypto.EncodeDER(rawSig), byte(hashType))
	t.Inputs[inputIndex].UnlockScript = crypto.P2PKHUnlockScript(sigField, pubKey)

	return t.SerializeHex()
}
