// Package witness decodes the two lock scripts' witness byte layouts into
// typed, mostly zero-copy views, per spec §3.
package witness

import "encoding/binary"

// FundingWitnessLen is the funding-lock witness's fixed total length:
// version(8) + outpoint(36) + aggregated pubkey(32) + signature(65) = 141,
// per the byte-offset table and the witness[76..141] signature slice in
// spec §4.2 step 7 (the spec's own prose header citing "Exactly 121 bytes"
// does not add up against its own field table and is treated as a slip;
// 141 is the value this module builds and tests against).
const FundingWitnessLen = 141

// fundingCommitmentLen is the length of the configuration prefix the lock
// argument commits to: version(8) + outpoint(36) + aggregated pubkey(32),
// the 76-byte reading spec §9 resolves the reference's ambiguity to.
const fundingCommitmentLen = 76

// Funding is a zero-copy view over a 141-byte funding-lock witness.
type Funding struct {
	raw []byte
}

// ParseFunding validates raw's length and wraps it; it does not check the
// lock-argument commitment (the caller does that over CommitmentExtent()).
func ParseFunding(raw []byte) (Funding, bool) {
	if len(raw) != FundingWitnessLen {
		return Funding{}, false
	}
	return Funding{raw: raw}, true
}

// CommitmentExtent returns the 76-byte prefix W the 20-byte lock argument
// commits to (version ‖ funding_outpoint ‖ aggregated pubkey).
func (f Funding) CommitmentExtent() []byte {
	return f.raw[0:fundingCommitmentLen]
}

// Version is the witness's little-endian version field.
func (f Funding) Version() []byte {
	return f.raw[0:8]
}

// VersionUint64 decodes Version as a little-endian uint64.
func (f Funding) VersionUint64() uint64 {
	return binary.LittleEndian.Uint64(f.raw[0:8])
}

// FundingOutpoint is the opaque 36-byte outpoint of the consumed funding
// cell that this witness commits to.
func (f Funding) FundingOutpoint() []byte {
	return f.raw[8:44]
}

// AggregatedPubkey is the 32-byte x-only MuSig2 aggregated public key.
func (f Funding) AggregatedPubkey() []byte {
	return f.raw[44:76]
}

// Signature is the 65-byte signature accepted by the auth verifier under
// algorithm id 0.
func (f Funding) Signature() []byte {
	return f.raw[76:141]
}
