// Package fundinglock implements the funding-lock entry point: the 2-of-2
// MuSig2-gated multisig cell that holds channel funds for the cooperative
// life of a payment channel (spec.md §4.2).
package fundinglock

import (
	"github.com/contrun/cfn-scripts/auth"
	"github.com/contrun/cfn-scripts/hostvm"
	"github.com/contrun/cfn-scripts/witness"
)

// ArgsLen is the funding lock's required script-argument length.
const ArgsLen = 20

// Verify runs the funding-lock entry point against h, returning nil on
// success (the auth verifier accepted the call) or the *hostvm.ScriptError
// the script would exit with.
func Verify(h hostvm.Host) *hostvm.ScriptError {
	// Step 1: a second group input means this script is guarding more than
	// one cell at once, which the funding lock does not support.
	if _, err := h.LoadInputSince(1, hostvm.GroupInput); err == nil {
		return hostvm.NewScriptError(hostvm.CodeMultipleInputs, "funding lock guards more than one group input")
	}

	script, err := h.LoadScript()
	if err != nil {
		return hostvm.FromSysError(err)
	}
	if len(script.Args) != ArgsLen {
		return hostvm.NewScriptError(hostvm.CodeArgsLenError, "script args must be 20 bytes")
	}

	raw, err := h.LoadWitness(0, hostvm.GroupInput)
	if err != nil {
		return hostvm.FromSysError(err)
	}
	w, ok := witness.ParseFunding(raw)
	if !ok {
		return hostvm.NewScriptError(hostvm.CodeWitnessLenError, "funding witness must be 141 bytes")
	}

	commitment := hostvm.Blake2b160(w.CommitmentExtent())
	if commitment != [20]byte(script.Args[0:20]) {
		return hostvm.NewScriptError(hostvm.CodeWitnessHashError, "witness commitment does not match script args")
	}

	txHash, err := h.LoadTxHash()
	if err != nil {
		return hostvm.FromSysError(err)
	}
	message := deriveMessage(w, txHash)
	pubkeyHash := hostvm.Blake2b160(w.AggregatedPubkey())

	return auth.Verify(h, w.Signature(), message[:], pubkeyHash[:])
}

// deriveMessage computes the MuSig2 signing message as the Blake2b256
// digest of version ‖ funding_outpoint ‖ tx_hash (spec.md §4.2 step 5).
func deriveMessage(w witness.Funding, txHash [32]byte) [32]byte {
	buf := make([]byte, 0, 8+36+32)
	buf = append(buf, w.Version()...)
	buf = append(buf, w.FundingOutpoint()...)
	buf = append(buf, txHash[:]...)
	return hostvm.Blake2b256(buf)
}
