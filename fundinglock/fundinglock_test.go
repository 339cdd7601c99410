package fundinglock

import (
	"testing"

	"github.com/contrun/cfn-scripts/hostvm"
	"github.com/contrun/cfn-scripts/hostvm/mockhost"
)

func buildValidHost() *mockhost.Host {
	version := make([]byte, 8)
	outpoint := make([]byte, 36)
	outpoint[0] = 0x01
	pubkey := make([]byte, 32)
	pubkey[0] = 0x02
	sig := make([]byte, 65)
	sig[0] = 0x03

	w := make([]byte, 0, 141)
	w = append(w, version...)
	w = append(w, outpoint...)
	w = append(w, pubkey...)
	w = append(w, sig...)

	args := hostvm.Blake2b160(w[0:76])
	txHash := [32]byte{0xAA}

	return &mockhost.Host{
		Script: hostvm.Script{CodeHash: [32]byte{0x01}, HashType: 1, Args: args[:]},
		TxHash: txHash,
		GroupInputs: []mockhost.Cell{
			{Capacity: 1_000_000_000, Lock: hostvm.Script{CodeHash: [32]byte{0x01}, HashType: 1, Args: args[:]}},
		},
		Witnesses: [][]byte{w},
		Since:     []hostvm.Since{0},
	}
}

func TestVerify_OK(t *testing.T) {
	h := buildValidHost()
	if err := Verify(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerify_RejectsSecondGroupInput(t *testing.T) {
	h := buildValidHost()
	h.Since = append(h.Since, 0) // a second group input's since is now observable
	if err := Verify(h); err == nil || err.Code != hostvm.CodeMultipleInputs {
		t.Fatalf("expected CodeMultipleInputs, got %v", err)
	}
}

func TestVerify_RejectsWrongArgsLength(t *testing.T) {
	h := buildValidHost()
	h.Script.Args = h.Script.Args[:10]
	if err := Verify(h); err == nil || err.Code != hostvm.CodeArgsLenError {
		t.Fatalf("expected CodeArgsLenError, got %v", err)
	}
}

func TestVerify_RejectsWrongWitnessLength(t *testing.T) {
	h := buildValidHost()
	h.Witnesses[0] = h.Witnesses[0][:100]
	if err := Verify(h); err == nil || err.Code != hostvm.CodeWitnessLenError {
		t.Fatalf("expected CodeWitnessLenError, got %v", err)
	}
}

func TestVerify_RejectsCommitmentMismatch(t *testing.T) {
	h := buildValidHost()
	badArgs := make([]byte, 20)
	badArgs[0] = 0xFF
	h.Script.Args = badArgs
	if err := Verify(h); err == nil || err.Code != hostvm.CodeWitnessHashError {
		t.Fatalf("expected CodeWitnessHashError, got %v", err)
	}
}

func TestVerify_PropagatesAuthRejection(t *testing.T) {
	h := buildValidHost()
	h.VerifyResult = hostvm.NewScriptError(hostvm.CodeAuthError, "bad signature")
	if err := Verify(h); err == nil || err.Code != hostvm.CodeAuthError {
		t.Fatalf("expected CodeAuthError, got %v", err)
	}
}
