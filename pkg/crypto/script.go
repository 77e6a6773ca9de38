// Script assembly for the two transparent locking templates.
//
// Only direct pushes below 0x4c appear in these scripts, so a single length
// byte is the push opcode; no OP_PUSHDATA forms are needed.
package crypto

import (
	"github.com/suffix-labs/zcash-tsign/pkg/chain"
)

// Script opcodes used by the transparent templates.
const (
	opDup         = 0x76
	opHash160     = 0xA9
	opEqual       = 0x87
	opEqualVerify = 0x88
	opCheckSig    = 0xAC
)

// P2PKHLockScript builds OP_DUP OP_HASH160 <hash20> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHLockScript(hash [20]byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, opDup, opHash160, 20)
	script = append(script, hash[:]...)
	script = append(script, opEqualVerify, opCheckSig)
	return script
}

// P2SHLockScript builds OP_HASH160 <hash20> OP_EQUAL.
func P2SHLockScript(hash [20]byte) []byte {
	script := make([]byte, 0, 23)
	script = append(script, opHash160, 20)
	script = append(script, hash[:]...)
	script = append(script, opEqual)
	return script
}

// AddressLockScript resolves a transparent address to its locking script.
// Address version bytes outside the network's two recognized prefixes fail
// with UnsupportedAddressTypeError.
func AddressLockScript(addr string, params *chain.Params) ([]byte, error) {
	kind, hash, err := DecodeAddress(addr, params)
	if err != nil {
		return nil, err
	}
	switch kind {
	case AddressP2SH:
		return P2SHLockScript(hash), nil
	default:
		return P2PKHLockScript(hash), nil
	}
}

// P2PKHUnlockScript builds the unlocking script for a P2PKH input:
// push(sig||hashType) push(pubkey).
func P2PKHUnlockScript(sigWithHashType, pubKey []byte) []byte {
	script := make([]byte, 0, 2+len(sigWithHashType)+len(pubKey))
	script = append(script, byte(len(sigWithHashType)))
	script = append(script, sigWithHashType...)
	script = append(script, byte(len(pubKey)))
	script = append(script, pubKey...)
	return script
}
