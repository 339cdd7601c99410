package hostvm

import (
	"crypto/sha256"

	blake2b "github.com/minio/blake2b-simd"
)

// ckbHashPersonalization is the personalization string used throughout the
// chain for general-purpose hashing ("ckb-default-hash"); the lock scripts
// commit to it for both the 20-byte argument derivation and the MuSig2
// message digest so that a witness hash computed off-chain matches the
// on-chain check byte-for-byte. golang.org/x/crypto/blake2b does not expose
// personalization, so hashing goes through blake2b-simd's Config instead —
// the same library the CKB Go SDK uses for ckb_hash::blake2b_256.
var ckbHashPersonalization = []byte("ckb-default-hash")

// Blake2b256 returns the 32-byte Blake2b digest of b under the chain's
// default personalization, matching ckb_hash::blake2b_256.
func Blake2b256(b []byte) [32]byte {
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: ckbHashPersonalization})
	if err != nil {
		panic(err)
	}
	h.Write(b)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2b160 truncates Blake2b256(b) to its first 20 bytes, the payment-hash
// and lock-argument commitment width used throughout spec §3.
func Blake2b160(b []byte) [20]byte {
	full := Blake2b256(b)
	var out [20]byte
	copy(out[:], full[:20])
	return out
}

// Sha256_160 truncates SHA-256(b) to its first 20 bytes, the alternate
// payment-hash algorithm selectable via an HTLC's flags byte.
func Sha256_160(b []byte) [20]byte {
	full := sha256.Sum256(b)
	var out [20]byte
	copy(out[:], full[:20])
	return out
}
