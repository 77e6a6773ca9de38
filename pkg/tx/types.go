// Package tx implements the wire codec for Overwinter/Sapling-family
// transparent transactions.
//
// The format is the v1-v4 Zcash transaction layout: little-endian integers
// throughout, compact-size length prefixes, and three header-flag-dependent
// fields (version group ID, expiry height, value balance). Shielded sections
// are carried only as empty counts; this codec neither builds nor signs
// shielded data.
//
// Reference: Zcash protocol specification §7.1 (transaction encoding).
package tx

// Version group IDs identifying the Overwinter and Sapling transaction
// format families.
const (
	OverwinterVersionGroupID uint32 = 0x03C48270
	SaplingVersionGroupID    uint32 = 0x892F2085
)

// overwinterFlag is bit 31 of the version field. When set, the transaction
// uses the Overwinter header layout (version group ID present).
const overwinterFlag uint32 = 1 << 31

// TxIn is a transparent input.
type TxIn struct {
	PrevTxID     [32]byte // Referenced txid, wire byte order
	PrevIndex    uint32   // Output index in the referenced transaction
	UnlockScript []byte   // scriptSig
	Sequence     uint32
}

// TxOut is a transparent output.
type TxOut struct {
	Value      int64 // Amount in zatoshis
	LockScript []byte
}

// Transaction is the mutable in-memory form of a transparent transaction.
//
// Field presence on the wire (VersionGroupID, ExpiryHeight, ValueBalance) is
// always recomputed from Version and VersionGroupID when serializing, never
// remembered from parse time, so mutating scripts cannot desynchronize the
// format.
type Transaction struct {
	Version        int32 // Raw header value; bit 31 = overwintered
	VersionGroupID uint32
	Inputs         []TxIn
	Outputs        []TxOut
	LockTime       uint32
	ExpiryHeight   uint32
	ValueBalance   int64 // Net Sapling value balance; always zero here
}

// Overwintered reports whether bit 31 of the version field is set.
func (t *Transaction) Overwintered() bool {
	return uint32(t.Version)&overwinterFlag != 0
}

// VersionNumber returns the version with the overwinter flag masked off.
func (t *Transaction) VersionNumber() int32 {
	return int32(uint32(t.Version) &^ overwinterFlag)
}

// hasExpiryHeight reports whether the expiry height field is on the wire.
func (t *Transaction) hasExpiryHeight() bool {
	return t.Overwintered() || t.VersionNumber() >= 3
}

// hasSaplingFields reports whether the value balance and the empty shielded
// section counts are on the wire.
func (t *Transaction) hasSaplingFields() bool {
	return t.Overwintered() && t.VersionGroupID == SaplingVersionGroupID
}
