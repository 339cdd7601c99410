package commitmentlock

import (
	"testing"

	"github.com/contrun/cfn-scripts/hostvm"
	"github.com/contrun/cfn-scripts/hostvm/mockhost"
	"github.com/contrun/cfn-scripts/witness"
)

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func buildBaseScript(delay hostvm.Since, localDelayPkh, revocationPkh []byte) []byte {
	out := make([]byte, 0, witness.BaseScriptLen)
	out = append(out, le64(uint64(delay))...)
	out = append(out, localDelayPkh...)
	out = append(out, revocationPkh...)
	return out
}

func buildHTLCRecord(receiving, sha256Hash bool, amount uint64, paymentHash, remotePkh, localPkh []byte, expiry hostvm.Since) []byte {
	out := make([]byte, witness.HTLCLen)
	var flags byte
	if receiving {
		flags |= 0b01
	}
	if sha256Hash {
		flags |= 0b10
	}
	out[0] = flags
	hostvm.Uint128FromU64(amount).PutLE16(out[1:17])
	copy(out[17:37], paymentHash)
	copy(out[37:57], remotePkh)
	copy(out[57:77], localPkh)
	copy(out[77:85], le64(uint64(expiry)))
	return out
}

func buildWitness(base []byte, htlcs [][]byte, unlockType byte, sig, preimage []byte) []byte {
	body := append([]byte{}, witness.EmptyWitnessArgs[:]...)
	body = append(body, base...)
	for _, h := range htlcs {
		body = append(body, h...)
	}
	body = append(body, unlockType)
	body = append(body, sig...)
	if preimage != nil {
		body = append(body, preimage...)
	}
	return body
}

func codeHashFor(label byte) [32]byte {
	var h [32]byte
	h[0] = label
	return h
}

func TestVerify_RevocationSpend(t *testing.T) {
	localDelayPkh := make([]byte, 20)
	revocationPkh := make([]byte, 20)
	revocationPkh[0] = 0x01
	base := buildBaseScript(hostvm.NewEpochSince(10, 0, 0), localDelayPkh, revocationPkh)
	args := hostvm.Blake2b160(base)
	w := buildWitness(base, nil, 0xFF, make([]byte, 65), nil)

	lock := hostvm.Script{CodeHash: codeHashFor(0x01), HashType: 1, Args: args[:]}
	h := &mockhost.Host{
		Script:      lock,
		TxHash:      [32]byte{0xBB},
		GroupInputs: []mockhost.Cell{{Capacity: 1_000_000_000, Lock: lock}},
		Witnesses:   [][]byte{w},
		Since:       []hostvm.Since{0},
	}
	if err := Verify(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestVerify_LocalDelaySpend pins spec.md §8 S3's literal worked values:
// delay_epoch = epoch(10, 1/2), and a since of epoch(12, 0/1) must satisfy
// it on epoch number alone, regardless of its lesser fraction.
func TestVerify_LocalDelaySpend(t *testing.T) {
	delay := hostvm.NewEpochSince(10, 1, 2)
	base := buildBaseScript(delay, make([]byte, 20), make([]byte, 20))
	args := hostvm.Blake2b160(base)
	w := buildWitness(base, nil, 0xFF, make([]byte, 65), nil)
	lock := hostvm.Script{CodeHash: codeHashFor(0x02), HashType: 1, Args: args[:]}

	newHost := func(since hostvm.Since) *mockhost.Host {
		return &mockhost.Host{
			Script:      lock,
			TxHash:      [32]byte{0xCC},
			GroupInputs: []mockhost.Cell{{Capacity: 1_000_000_000, Lock: lock}},
			Witnesses:   [][]byte{w},
			Since:       []hostvm.Since{since},
		}
	}

	if err := Verify(newHost(hostvm.NewEpochSince(12, 0, 1))); err != nil {
		t.Fatalf("expected epoch(12, 0/1) >= epoch(10, 1/2) to succeed, got %v", err)
	}
	if err := Verify(newHost(hostvm.NewEpochSince(5, 1, 2))); err == nil || err.Code != hostvm.CodeInvalidSince {
		t.Fatalf("expected CodeInvalidSince for a lower epoch number, got %v", err)
	}
	// Same epoch number: only the fraction (1/4 < 1/2) decides this one.
	if err := Verify(newHost(hostvm.NewEpochSince(10, 1, 4))); err == nil || err.Code != hostvm.CodeInvalidSince {
		t.Fatalf("expected CodeInvalidSince for epoch(10, 1/4) < epoch(10, 1/2), got %v", err)
	}
}

func TestVerify_OfferedHTLCClaimWithPreimage(t *testing.T) {
	base := buildBaseScript(hostvm.NewEpochSince(10, 0, 0), make([]byte, 20), make([]byte, 20))
	preimage := []byte("the-secret-preimage-value-32byte")[:32]
	paymentHash := hostvm.Blake2b160(preimage)
	remotePkh := make([]byte, 20)
	remotePkh[0] = 0x09

	htlc0 := buildHTLCRecord(false, false, 500_000_000, paymentHash[:], remotePkh, make([]byte, 20), 0)
	htlc1 := buildHTLCRecord(false, false, 800_000_000, make([]byte, 20), make([]byte, 20), make([]byte, 20), 0)

	scriptPart := append(append([]byte{}, base...), htlc0...)
	scriptPart = append(scriptPart, htlc1...)
	args := hostvm.Blake2b160(scriptPart)
	w := buildWitness(base, [][]byte{htlc0, htlc1}, 0x00, make([]byte, 65), preimage)

	lock := hostvm.Script{CodeHash: codeHashFor(0x03), HashType: 1, Args: args[:]}
	successorScript := append(append([]byte{}, base...), htlc1...)
	successorArgs := hostvm.Blake2b160(successorScript)

	h := &mockhost.Host{
		Script:      lock,
		TxHash:      [32]byte{0xDD},
		GroupInputs: []mockhost.Cell{{Capacity: 2_000_000_000, Lock: lock}},
		Outputs: []mockhost.Cell{
			{Capacity: 2_000_000_000 - 500_000_000, Lock: hostvm.Script{CodeHash: codeHashFor(0x03), HashType: 1, Args: successorArgs[:]}},
		},
		Witnesses: [][]byte{w},
		Since:     []hostvm.Since{0},
	}
	if err := Verify(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerify_OfferedHTLCClaimMissingPreimageRejects(t *testing.T) {
	base := buildBaseScript(hostvm.NewEpochSince(10, 0, 0), make([]byte, 20), make([]byte, 20))
	paymentHash := hostvm.Blake2b160([]byte("irrelevant"))
	htlc0 := buildHTLCRecord(false, false, 500_000_000, paymentHash[:], make([]byte, 20), make([]byte, 20), 0)
	scriptPart := append(append([]byte{}, base...), htlc0...)
	args := hostvm.Blake2b160(scriptPart)
	w := buildWitness(base, [][]byte{htlc0}, 0x00, make([]byte, 65), nil)

	lock := hostvm.Script{CodeHash: codeHashFor(0x04), HashType: 1, Args: args[:]}
	h := &mockhost.Host{
		Script:      lock,
		TxHash:      [32]byte{0xEE},
		GroupInputs: []mockhost.Cell{{Capacity: 1_000_000_000, Lock: lock}},
		Outputs:     []mockhost.Cell{{Capacity: 500_000_000, Lock: lock}},
		Witnesses:   [][]byte{w},
		Since:       []hostvm.Since{0},
	}
	err := Verify(h)
	if err == nil || err.Code != hostvm.CodePreimageError {
		t.Fatalf("expected CodePreimageError, got %v", err)
	}
}

func TestVerify_RejectsMalformedWitnessLength(t *testing.T) {
	base := buildBaseScript(hostvm.NewEpochSince(10, 0, 0), make([]byte, 20), make([]byte, 20))
	args := hostvm.Blake2b160(base)
	w := buildWitness(base, nil, 0x00, make([]byte, 65), nil)
	w = append(w, make([]byte, 40)...) // neither n*HTLCLen nor n*HTLCLen+PreimageLen beyond the base shape

	lock := hostvm.Script{CodeHash: codeHashFor(0x05), HashType: 1, Args: args[:]}
	h := &mockhost.Host{
		Script:      lock,
		TxHash:      [32]byte{0xFF},
		GroupInputs: []mockhost.Cell{{Capacity: 1_000_000_000, Lock: lock}},
		Witnesses:   [][]byte{w},
		Since:       []hostvm.Since{0},
	}
	err := Verify(h)
	if err == nil || err.Code != hostvm.CodeWitnessLenError {
		t.Fatalf("expected CodeWitnessLenError, got %v", err)
	}
}

func TestVerify_RejectsSecondGroupInput(t *testing.T) {
	base := buildBaseScript(hostvm.NewEpochSince(10, 0, 0), make([]byte, 20), make([]byte, 20))
	args := hostvm.Blake2b160(base)
	w := buildWitness(base, nil, 0xFF, make([]byte, 65), nil)
	lock := hostvm.Script{CodeHash: codeHashFor(0x06), HashType: 1, Args: args[:]}
	h := &mockhost.Host{
		Script:      lock,
		TxHash:      [32]byte{0x01},
		GroupInputs: []mockhost.Cell{{Capacity: 1_000_000_000, Lock: lock}, {Capacity: 1_000_000_000, Lock: lock}},
		Witnesses:   [][]byte{w},
		Since:       []hostvm.Since{0, 0},
	}
	err := Verify(h)
	if err == nil || err.Code != hostvm.CodeMultipleInputs {
		t.Fatalf("expected CodeMultipleInputs, got %v", err)
	}
}
