package auth

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/contrun/cfn-scripts/hostvm/mockhost"
)

func TestVerify_FormatsArgsAndSucceeds(t *testing.T) {
	h := &mockhost.Host{}
	sig := make([]byte, 65)
	sig[0] = 0xAB
	msg := make([]byte, 32)
	msg[0] = 0xCD
	pkh := make([]byte, 20)
	pkh[0] = 0xEF

	if err := Verify(h, sig, msg, pkh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Calls) != 1 {
		t.Fatalf("expected exactly one ExecCell call, got %d", len(h.Calls))
	}
	call := h.Calls[0]
	if call.CodeHash != CodeHash || call.HashType != HashType {
		t.Fatalf("unexpected code hash/hash type passed to ExecCell")
	}
	if len(call.Args) != 4 {
		t.Fatalf("expected 4 hex-encoded args, got %d", len(call.Args))
	}
	if call.Args[0] != hex.EncodeToString([]byte{AlgorithmIDCkb}) {
		t.Fatalf("unexpected algorithm id arg: %s", call.Args[0])
	}
	if call.Args[1] != hex.EncodeToString(sig) {
		t.Fatalf("unexpected signature arg")
	}
	if call.Args[2] != hex.EncodeToString(msg) {
		t.Fatalf("unexpected message arg")
	}
	if call.Args[3] != hex.EncodeToString(pkh) {
		t.Fatalf("unexpected pubkey hash arg")
	}
}

func TestVerify_PropagatesVerifierRejection(t *testing.T) {
	h := &mockhost.Host{VerifyResult: errors.New("signature does not verify")}
	err := Verify(h, make([]byte, 65), make([]byte, 32), make([]byte, 20))
	if err == nil {
		t.Fatalf("expected an error when the verifier cell rejects")
	}
}
