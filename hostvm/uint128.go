package hostvm

import "encoding/binary"

// Uint128 is a minimal little-endian unsigned 128-bit integer, enough for
// the payment-amount and token-amount arithmetic spec §4.3 requires (no
// general-purpose bignum behavior is needed: amounts only ever shrink by a
// known HTLC payment amount).
type Uint128 struct {
	Lo, Hi uint64
}

// Uint128FromU64 widens a 64-bit cell capacity into a Uint128, per spec
// §4.3's "widened to u128" rule for capacity-denominated cells.
func Uint128FromU64(v uint64) Uint128 { return Uint128{Lo: v} }

// Uint128FromLE16 decodes a 16-byte little-endian buffer as used for a
// cell's token-amount data and for an HTLC's payment_amount field.
func Uint128FromLE16(b []byte) Uint128 {
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// PutLE16 encodes u into a 16-byte little-endian buffer.
func (u Uint128) PutLE16(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], u.Lo)
	binary.LittleEndian.PutUint64(b[8:16], u.Hi)
}

// Sub returns u - v modulo 2^128. Underflow is not detected or reported: a
// v larger than u wraps around.
func (u Uint128) Sub(v Uint128) Uint128 {
	lo := u.Lo - v.Lo
	borrow := uint64(0)
	if u.Lo < v.Lo {
		borrow = 1
	}
	return Uint128{Lo: lo, Hi: u.Hi - v.Hi - borrow}
}

// Equal reports whether u and v carry the same value.
func (u Uint128) Equal(v Uint128) bool { return u.Lo == v.Lo && u.Hi == v.Hi }
