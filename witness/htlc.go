package witness

import (
	"encoding/binary"

	"github.com/contrun/cfn-scripts/hostvm"
)

// HTLCLen is the fixed size of one HTLC sub-record within the commitment
// witness (spec §3, HTLC record table).
const HTLCLen = 85

// HTLCDirection distinguishes which side of the channel offered the HTLC.
type HTLCDirection uint8

const (
	// Offered means this side of the channel is paying out the HTLC;
	// the remote side claims it with the preimage, the local side can
	// refund it after expiry.
	Offered HTLCDirection = iota
	// Received means the remote side is paying this side; the local
	// side claims it with the preimage, the remote side can refund it
	// after expiry.
	Received
)

// PaymentHashAlgorithm selects which hash the HTLC's payment_hash field was
// produced under.
type PaymentHashAlgorithm uint8

const (
	PaymentHashBlake2b PaymentHashAlgorithm = iota
	PaymentHashSHA256
)

// HTLC is a zero-copy, re-bindable view over one 85-byte HTLC sub-record
// borrowed from a commitment witness, mirroring the reference's
// `struct Htlc<'a>(&'a [u8])`.
type HTLC struct {
	raw []byte
}

// NewHTLC wraps an 85-byte slice as an HTLC view. The caller must ensure
// len(raw) == HTLCLen.
func NewHTLC(raw []byte) HTLC { return HTLC{raw: raw} }

// Direction reads the flags byte's bit 0.
func (h HTLC) Direction() HTLCDirection {
	if h.raw[0]&0b0000_0001 == 0 {
		return Offered
	}
	return Received
}

// HashAlgorithm reads the flags byte's bit 1.
func (h HTLC) HashAlgorithm() PaymentHashAlgorithm {
	if (h.raw[0]>>1)&0b0000_0001 == 0 {
		return PaymentHashBlake2b
	}
	return PaymentHashSHA256
}

// PaymentAmount decodes the little-endian 128-bit payment amount.
func (h HTLC) PaymentAmount() hostvm.Uint128 {
	return hostvm.Uint128FromLE16(h.raw[1:17])
}

// PaymentHash is the 20-byte truncated hash of the redeeming preimage.
func (h HTLC) PaymentHash() []byte { return h.raw[17:37] }

// RemotePubkeyHash is the 20-byte Blake2b hash of the remote HTLC pubkey.
func (h HTLC) RemotePubkeyHash() []byte { return h.raw[37:57] }

// LocalPubkeyHash is the 20-byte Blake2b hash of the local HTLC pubkey.
func (h HTLC) LocalPubkeyHash() []byte { return h.raw[57:77] }

// ExpiryRaw is the HTLC's time-lock-encoded expiry.
func (h HTLC) ExpiryRaw() uint64 { return binary.LittleEndian.Uint64(h.raw[77:85]) }

// Bytes returns the raw 85-byte record, e.g. to re-concatenate it into a
// successor witness script.
func (h HTLC) Bytes() []byte { return h.raw }
