package witness

import (
	"bytes"
	"encoding/binary"

	"github.com/contrun/cfn-scripts/hostvm"
)

// EmptyWitnessArgs is a 16-byte sentinel prefix every commitment-lock
// witness carries ahead of its real payload, a placeholder that keeps the
// witness args compatible with xudt's own witness-args expectations.
var EmptyWitnessArgs = [16]byte{16, 0, 0, 0, 16, 0, 0, 0, 16, 0, 0, 0, 16, 0, 0, 0}

const (
	// BaseScriptLen is the fixed-shape prefix every commitment witness
	// carries ahead of its HTLC list: local_delay_epoch(8) ‖
	// local_delay_pubkey_hash(20) ‖ revocation_pubkey_hash(20).
	BaseScriptLen = 48
	// UnlockWithSignatureLen is unlock_type(1) ‖ signature(65).
	UnlockWithSignatureLen = 66
	// PreimageLen is the width of an optionally-appended HTLC preimage.
	PreimageLen = 32
	// MinWitnessLen is the shortest a commitment witness can be: a base
	// script with no pending HTLCs, plus the unlock tail.
	MinWitnessLen = BaseScriptLen + UnlockWithSignatureLen
)

// Commitment is a decoded commitment-lock witness: the sentinel has been
// stripped and the remaining bytes classified into a base script, zero or
// more HTLC records, an unlock tail, and an optional preimage, per spec
// §4.3 Step A.
type Commitment struct {
	body         []byte // witness with the EmptyWitnessArgs sentinel removed
	scriptLen    int    // len(base script + htlc records), the hashed prefix
	pendingHTLCs int
	preimage     []byte // nil when the unlock tail carries no preimage
}

// ParseCommitment strips the sentinel prefix and classifies the remaining
// length, matching the reference's witness_len match arms exactly: a
// remainder (mod HTLCLen) of 0 means no preimage, a remainder of
// PreimageLen means the last PreimageLen bytes are a preimage; anything
// else is rejected.
func ParseCommitment(raw []byte) (Commitment, *hostvm.ScriptError) {
	if len(raw) < len(EmptyWitnessArgs) || !bytes.Equal(raw[:len(EmptyWitnessArgs)], EmptyWitnessArgs[:]) {
		return Commitment{}, hostvm.NewScriptError(hostvm.CodeEmptyWitnessArgsError, "witness missing empty-args sentinel")
	}
	body := raw[len(EmptyWitnessArgs):]
	n := len(body)
	if n < MinWitnessLen {
		return Commitment{}, hostvm.NewScriptError(hostvm.CodeWitnessLenError, "witness shorter than the minimum base+unlock shape")
	}

	r := n - MinWitnessLen
	var pending int
	var preimage []byte
	switch {
	case r%HTLCLen == 0:
		pending = r / HTLCLen
	case r%HTLCLen == PreimageLen:
		pending = (r - PreimageLen) / HTLCLen
		preimage = body[n-PreimageLen:]
	default:
		return Commitment{}, hostvm.NewScriptError(hostvm.CodeWitnessLenError, "witness length is not base+n*htlc(+preimage)")
	}

	unlockLen := UnlockWithSignatureLen
	if preimage != nil {
		unlockLen += PreimageLen
	}
	return Commitment{
		body:         body,
		scriptLen:    n - unlockLen,
		pendingHTLCs: pending,
		preimage:     preimage,
	}, nil
}

// PendingHTLCs is the number of HTLC records carried in the witness.
func (c Commitment) PendingHTLCs() int { return c.pendingHTLCs }

// Preimage returns the appended redeeming preimage and true, or nil and
// false if the witness carries none.
func (c Commitment) Preimage() ([]byte, bool) {
	if c.preimage == nil {
		return nil, false
	}
	return c.preimage, true
}

// ScriptPart is the base script plus HTLC list, the prefix whose Blake2b160
// digest must equal the lock script's 20-byte argument.
func (c Commitment) ScriptPart() []byte { return c.body[0:c.scriptLen] }

// BaseScript is the fixed 48-byte prefix ahead of the HTLC list.
func (c Commitment) BaseScript() []byte { return c.body[0:BaseScriptLen] }

// LocalDelayEpoch is the base script's little-endian encoded delay bound.
func (c Commitment) LocalDelayEpoch() hostvm.Since {
	return hostvm.NewSince(binary.LittleEndian.Uint64(c.body[0:8]))
}

// LocalDelayPubkeyHash is the 20-byte hash the local party's delayed
// settlement key must match.
func (c Commitment) LocalDelayPubkeyHash() []byte { return c.body[8:28] }

// RevocationPubkeyHash is the 20-byte hash the counterparty's revocation
// key must match.
func (c Commitment) RevocationPubkeyHash() []byte { return c.body[28:48] }

// HTLC returns the i'th HTLC record, 0 <= i < PendingHTLCs().
func (c Commitment) HTLC(i int) HTLC {
	start := BaseScriptLen + i*HTLCLen
	return NewHTLC(c.body[start : start+HTLCLen])
}

// UnlockType is the single byte selecting the unlock branch: 0xFF for
// revocation/local-delay, otherwise an index into the HTLC list.
func (c Commitment) UnlockType() byte { return c.body[c.scriptLen] }

// Signature is the 65-byte signature presented to the auth verifier.
func (c Commitment) Signature() []byte { return c.body[c.scriptLen+1 : c.scriptLen+1+65] }

// SuccessorScript rebuilds the base script plus every HTLC record except
// the one at excludeIndex, the bytes a valid output cell's lock argument
// must be the Blake2b160 digest of (spec §4.3's output-continuation
// check).
func (c Commitment) SuccessorScript(excludeIndex int) []byte {
	out := make([]byte, 0, BaseScriptLen+(c.pendingHTLCs-1)*HTLCLen)
	out = append(out, c.BaseScript()...)
	for i := 0; i < c.pendingHTLCs; i++ {
		if i == excludeIndex {
			continue
		}
		out = append(out, c.HTLC(i).Bytes()...)
	}
	return out
}
