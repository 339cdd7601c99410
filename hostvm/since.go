package hostvm

// Since is an opaque 64-bit time-lock value as produced by the host for an
// input's "since" field, or embedded in a witness as a delay/expiry bound.
// Following the chain's since encoding, bit 63 marks it relative-to-input
// (always set for the values this module compares) and bits 61-62 select
// which of three incompatible scales (block height, epoch-with-fraction, or
// absolute timestamp) the low 56 bits are expressed in; spec §3 and §9
// require that "greater-or-equal" only ever compares two values sharing the
// same scale.
type Since uint64

const (
	sinceRelativeFlag uint64 = 1 << 63
	sinceMetricShift         = 61
	sinceMetricMask   uint64 = 0x3 << sinceMetricShift
	sinceValueMask    uint64 = (1 << 56) - 1

	MetricBlockNumber uint8 = 0
	MetricEpoch       uint8 = 1
	MetricTimestamp   uint8 = 2
)

// NewSince wraps a raw host-provided or witness-embedded 64-bit value.
func NewSince(raw uint64) Since { return Since(raw) }

// NewEpochSince packs an epoch-with-fraction value (epoch number, the
// index within the epoch, and the epoch's total length) the way the chain
// encodes it: number in bits 0-23, index in bits 24-39, length in bits
// 40-55, tagged relative and MetricEpoch.
func NewEpochSince(number, index, length uint64) Since {
	value := (number & 0xffffff) | (index&0xffff)<<24 | (length&0xffff)<<40
	return Since(sinceRelativeFlag | uint64(MetricEpoch)<<sinceMetricShift | value)
}

// NewBlockNumberSince packs a relative block-number time-lock value.
func NewBlockNumberSince(blocks uint64) Since {
	return Since(sinceRelativeFlag | uint64(MetricBlockNumber)<<sinceMetricShift | (blocks & sinceValueMask))
}

// Metric returns the since's scale tag.
func (s Since) Metric() uint8 {
	return uint8((uint64(s) & sinceMetricMask) >> sinceMetricShift)
}

// Value returns the since's magnitude, stripped of its flag and tag bits.
func (s Since) Value() uint64 {
	return uint64(s) & sinceValueMask
}

// EpochNumber, EpochIndex and EpochLength decode a MetricEpoch value's three
// packed fields (see NewEpochSince). Meaningless for any other metric.
func (s Since) EpochNumber() uint64 { return s.Value() & 0xffffff }
func (s Since) EpochIndex() uint64  { return (s.Value() >> 24) & 0xffff }
func (s Since) EpochLength() uint64 { return (s.Value() >> 40) & 0xffff }

// IsZero reports whether the encoded since is the literal value 0, the
// sentinel spec §4.3 uses to select the revocation/remote-claim branches of
// the commitment lock's unlock dispatch.
func (s Since) IsZero() bool { return uint64(s) == 0 }

// GreaterOrEqual reports whether s >= bound, interpreting both under their
// tag bits. It returns false (never true) when the two values carry
// different relative flags or metric tags, per spec §3 and the §9
// resolution that a mismatched comparison must reject rather than silently
// succeed or produce an undefined ordering.
//
// MetricEpoch values are epoch-number-with-fraction and are ordered the way
// ckb_types::core::EpochNumberWithFraction orders them (the type
// ckb_std::since::Since — which the commitment lock's Rust reference
// delegates to — wraps): by epoch number first, and only on a number tie by
// the index/length fraction, compared by cross-multiplication rather than
// by the raw packed bits (length sits above index in the packing, so
// comparing the packed value directly orders by length first and is wrong).
func (s Since) GreaterOrEqual(bound Since) bool {
	if (uint64(s)&sinceRelativeFlag) != (uint64(bound)&sinceRelativeFlag) || s.Metric() != bound.Metric() {
		return false
	}
	if s.Metric() == MetricEpoch {
		if s.EpochNumber() != bound.EpochNumber() {
			return s.EpochNumber() > bound.EpochNumber()
		}
		return s.EpochIndex()*bound.EpochLength() >= bound.EpochIndex()*s.EpochLength()
	}
	return s.Value() >= bound.Value()
}
