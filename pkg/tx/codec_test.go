package tx

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withOverwinterFlag sets bit 31 on a version number.
func withOverwinterFlag(version int32) int32 {
	return int32(uint32(version) | 1<<31)
}

// sampleTx builds a 2-in/2-out transaction with the given header fields.
func sampleTx(version int32, groupID uint32) *Transaction {
	t := &Transaction{
		Version:        version,
		VersionGroupID: groupID,
		LockTime:       12345,
		ExpiryHeight:   680000,
	}
	for i := byte(1); i <= 2; i++ {
		var prev [32]byte
		for j := range prev {
			prev[j] = i
		}
		t.Inputs = append(t.Inputs, TxIn{
			PrevTxID:     prev,
			PrevIndex:    uint32(i),
			UnlockScript: []byte{0x51}, // OP_1 placeholder
			Sequence:     0xfffffffe,
		})
	}
	t.Outputs = append(t.Outputs,
		TxOut{Value: 50000, LockScript: []byte{0x76, 0xa9, 0x14, 0xab, 0x88, 0xac}},
		TxOut{Value: 1, LockScript: []byte{0x6a}},
	)
	if !t.hasExpiryHeight() {
		t.ExpiryHeight = 0
	}
	return t
}

func TestRoundTripAllFormats(t *testing.T) {
	tests := []struct {
		name    string
		version int32
		groupID uint32
	}{
		{"legacy v1", 1, 0},
		{"pre-v3 v2", 2, 0},
		{"overwinter v3", withOverwinterFlag(3), OverwinterVersionGroupID},
		{"sapling v4", withOverwinterFlag(4), SaplingVersionGroupID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			original := sampleTx(tc.version, tc.groupID)
			raw, err := original.Serialize()
			require.NoError(t, err)

			parsed, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, original, parsed)

			again, err := parsed.Serialize()
			require.NoError(t, err)
			assert.Equal(t, raw, again, "serialize(parse(x)) must equal x byte-for-byte")
		})
	}
}

// A hand-assembled v1 transaction pins the field layout independently of the
// serializer.
func TestParseGoldenV1(t *testing.T) {
	golden := "01000000" + // version
		"01" + strings.Repeat("aa", 32) + "00000000" + "00" + "ffffffff" + // one input
		"01" + "e803000000000000" + "19" + "76a914" + strings.Repeat("bb", 20) + "88ac" + // one output
		"00000000" // lock time

	parsed, err := ParseHex(golden)
	require.NoError(t, err)

	assert.Equal(t, int32(1), parsed.Version)
	assert.False(t, parsed.Overwintered())
	require.Len(t, parsed.Inputs, 1)
	assert.Equal(t, uint32(0), parsed.Inputs[0].PrevIndex)
	assert.Equal(t, uint32(0xffffffff), parsed.Inputs[0].Sequence)
	assert.Empty(t, parsed.Inputs[0].UnlockScript)
	require.Len(t, parsed.Outputs, 1)
	assert.Equal(t, int64(1000), parsed.Outputs[0].Value)
	assert.Len(t, parsed.Outputs[0].LockScript, 25)
	assert.Equal(t, uint32(0), parsed.LockTime)

	reserialized, err := parsed.SerializeHex()
	require.NoError(t, err)
	assert.Equal(t, golden, reserialized)
}

// A script length of 0x19 widened to a three-byte prefix decodes to the same
// transaction but reserializes to different bytes, so it must not parse at
// all: accepting it would give one transaction two IDs.
func TestParseRejectsNonCanonicalLengths(t *testing.T) {
	widened := "01000000" +
		"01" + strings.Repeat("aa", 32) + "00000000" + "00" + "ffffffff" +
		"01" + "e803000000000000" + "fd1900" + "76a914" + strings.Repeat("bb", 20) + "88ac" +
		"00000000"

	var malformed *MalformedTransactionError
	_, err := ParseHex(widened)
	require.ErrorAs(t, err, &malformed)

	// The same transaction with the minimal prefix parses and round-trips.
	minimal := strings.Replace(widened, "fd1900", "19", 1)
	parsed, err := ParseHex(minimal)
	require.NoError(t, err)
	reserialized, err := parsed.SerializeHex()
	require.NoError(t, err)
	assert.Equal(t, minimal, reserialized)
}

// A widened input count must be rejected the same way as a script length.
func TestParseRejectsNonCanonicalCounts(t *testing.T) {
	widened := "01000000" +
		"fd0100" + strings.Repeat("aa", 32) + "00000000" + "00" + "ffffffff" +
		"01" + "e803000000000000" + "00" +
		"00000000"

	var malformed *MalformedTransactionError
	_, err := ParseHex(widened)
	require.ErrorAs(t, err, &malformed)
}

func TestSaplingEmitsEmptyShieldedCounts(t *testing.T) {
	sapling := sampleTx(withOverwinterFlag(4), SaplingVersionGroupID)
	raw, err := sapling.Serialize()
	require.NoError(t, err)

	// valueBalance (8) plus three zero counts terminate the encoding.
	tail := raw[len(raw)-11:]
	assert.Equal(t, make([]byte, 8), tail[:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, tail[8:])
}

func TestParseRejectsShieldedPayloads(t *testing.T) {
	sapling := sampleTx(withOverwinterFlag(4), SaplingVersionGroupID)
	raw, err := sapling.Serialize()
	require.NoError(t, err)

	// Claim one shielded spend descriptor.
	raw[len(raw)-3] = 0x01

	var malformed *MalformedTransactionError
	_, err = Parse(raw)
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Message, "shielded spend")
}

func TestParseRejectsTruncation(t *testing.T) {
	raw, err := sampleTx(1, 0).Serialize()
	require.NoError(t, err)

	var malformed *MalformedTransactionError
	for _, cut := range []int{1, 4, 5, 37, len(raw) - 1} {
		_, err := Parse(raw[:cut])
		require.ErrorAs(t, err, &malformed, "truncation at %d bytes", cut)
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	raw, err := sampleTx(1, 0).Serialize()
	require.NoError(t, err)

	var malformed *MalformedTransactionError
	_, err = Parse(append(raw, 0x00))
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Message, "trailing")
}

func TestParseRejectsOversizedLengthPrefix(t *testing.T) {
	// Input script claims 0xffffffff bytes.
	bad := "01000000" +
		"01" + strings.Repeat("aa", 32) + "00000000" + "feffffffff"

	var malformed *MalformedTransactionError
	_, err := ParseHex(bad)
	require.ErrorAs(t, err, &malformed)
}

func TestParseRejectsInvalidHex(t *testing.T) {
	var malformed *MalformedTransactionError
	_, err := ParseHex("zz")
	require.ErrorAs(t, err, &malformed)
}

// Field presence must follow the version flags at serialize time even when
// the struct was assembled on a different decision path.
func TestSerializePresenceRecomputed(t *testing.T) {
	legacy := sampleTx(1, 0)
	raw, err := legacy.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(raw)
	require.NoError(t, err)

	// Promote the parsed legacy transaction to Sapling. The extra fields
	// were never read, yet they must appear on the wire now.
	parsed.Version = withOverwinterFlag(4)
	parsed.VersionGroupID = SaplingVersionGroupID
	parsed.ExpiryHeight = 700000

	promoted, err := parsed.Serialize()
	require.NoError(t, err)

	reparsed, err := Parse(promoted)
	require.NoError(t, err)
	assert.Equal(t, SaplingVersionGroupID, reparsed.VersionGroupID)
	assert.Equal(t, uint32(700000), reparsed.ExpiryHeight)
	assert.Equal(t, int64(0), reparsed.ValueBalance)

	// And back: stripping the flag must drop the fields again.
	reparsed.Version = 1
	reparsed.VersionGroupID = 0
	reparsed.ExpiryHeight = 0
	demoted, err := reparsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, raw, demoted)
}

func TestTxIDStableAndReversed(t *testing.T) {
	raw, err := sampleTx(1, 0).Serialize()
	require.NoError(t, err)

	id1 := TxID(raw)
	id2 := TxID(raw)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)

	viaHex, err := TxIDHex(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, id1, viaHex)

	// Byte reversal: the display id read back-to-front equals the raw
	// double-SHA256 of the serialization.
	idBytes, err := hex.DecodeString(id1)
	require.NoError(t, err)
	reversed := make([]byte, len(idBytes))
	for i, b := range idBytes {
		reversed[len(idBytes)-1-i] = b
	}
	assert.NotEqual(t, idBytes, reversed)
}
