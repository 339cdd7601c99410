// Package commitmentlock implements the commitment-lock entry point: the
// four-way unlock state machine (revocation, local-delay settlement, HTLC
// claim via preimage, HTLC refund via expiry) guarding the cells produced
// by a unilateral channel close, plus the output-continuation invariant
// that re-commits any remaining HTLCs into a successor cell (spec.md §4.3).
package commitmentlock

import (
	"github.com/contrun/cfn-scripts/auth"
	"github.com/contrun/cfn-scripts/hostvm"
	"github.com/contrun/cfn-scripts/witness"
)

// ArgsLen is the commitment lock's required script-argument length.
const ArgsLen = 20

// revocationOrDelayUnlockType selects the revocation/local-delay branch of
// the unlock dispatch rather than an index into the HTLC list.
const revocationOrDelayUnlockType = 0xFF

// Verify runs the commitment-lock entry point against h, returning nil on
// success or the *hostvm.ScriptError the script would exit with.
func Verify(h hostvm.Host) *hostvm.ScriptError {
	if _, err := h.LoadInputSince(1, hostvm.GroupInput); err == nil {
		return hostvm.NewScriptError(hostvm.CodeMultipleInputs, "commitment lock guards more than one group input")
	}

	// load_cell_type's ItemMissing (no type script attached) is folded by
	// the Host adapter into CellType{Present: false}; any other error is a
	// genuine host-adapter failure.
	typeScript, err := h.LoadCellType(0, hostvm.GroupInput)
	if err != nil {
		return hostvm.FromSysError(err)
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
	c, serr := witness.ParseCommitment(raw)
	if serr != nil {
		return serr
	}

	commitment := hostvm.Blake2b160(c.ScriptPart())
	if commitment != [20]byte(script.Args[0:20]) {
		return hostvm.NewScriptError(hostvm.CodeWitnessHashError, "witness commitment does not match script args")
	}

	unlockType := c.UnlockType()
	signature := c.Signature()

	sinceVal, err := h.LoadInputSince(0, hostvm.GroupInput)
	if err != nil {
		return hostvm.FromSysError(err)
	}

	var pubkeyHash []byte

	switch {
	case unlockType == revocationOrDelayUnlockType:
		// Revocation and local-delay settlement spend the commitment
		// output directly; there are no sibling HTLCs to re-commit.
		if sinceVal.IsZero() {
			pubkeyHash = c.RevocationPubkeyHash()
		} else {
			delay := c.LocalDelayEpoch()
			if !sinceVal.GreaterOrEqual(delay) {
				return hostvm.NewScriptError(hostvm.CodeInvalidSince, "since does not satisfy local delay")
			}
			pubkeyHash = c.LocalDelayPubkeyHash()
		}

	default:
		k := int(unlockType)
		if k >= c.PendingHTLCs() {
			return hostvm.NewScriptError(hostvm.CodeInvalidUnlockType, "unlock_type does not index a pending HTLC")
		}
		htlc := c.HTLC(k)

		newAmount, aerr := loadInputAmount(h, typeScript)
		if aerr != nil {
			return aerr
		}

		switch {
		case htlc.Direction() == witness.Offered && sinceVal.IsZero():
			// Remote side claims with the preimage.
			if !preimageMatches(c, htlc) {
				return hostvm.NewScriptError(hostvm.CodePreimageError, "preimage does not match payment hash")
			}
			newAmount = newAmount.Sub(htlc.PaymentAmount())
			pubkeyHash = htlc.RemotePubkeyHash()

		case htlc.Direction() == witness.Offered && !sinceVal.IsZero():
			// Local side refunds after expiry.
			if !sinceVal.GreaterOrEqual(hostvm.NewSince(htlc.ExpiryRaw())) {
				return hostvm.NewScriptError(hostvm.CodeInvalidSince, "since does not satisfy htlc expiry")
			}
			pubkeyHash = htlc.LocalPubkeyHash()

		case htlc.Direction() == witness.Received && sinceVal.IsZero():
			// Local side claims with the preimage.
			if !preimageMatches(c, htlc) {
				return hostvm.NewScriptError(hostvm.CodePreimageError, "preimage does not match payment hash")
			}
			pubkeyHash = htlc.LocalPubkeyHash()

		default:
			// Received, since != 0: remote side refunds after expiry.
			if !sinceVal.GreaterOrEqual(hostvm.NewSince(htlc.ExpiryRaw())) {
				return hostvm.NewScriptError(hostvm.CodeInvalidSince, "since does not satisfy htlc expiry")
			}
			newAmount = newAmount.Sub(htlc.PaymentAmount())
			pubkeyHash = htlc.RemotePubkeyHash()
		}

		if serr := checkContinuation(h, script, c, k, typeScript, newAmount); serr != nil {
			return serr
		}
	}

	txHash, err := h.LoadTxHash()
	if err != nil {
		return hostvm.FromSysError(err)
	}
	return auth.Verify(h, signature, txHash[:], pubkeyHash)
}

// preimageMatches reports whether the witness-carried preimage hashes, via
// the HTLC's selected algorithm, to the HTLC's committed payment hash.
func preimageMatches(c witness.Commitment, htlc witness.HTLC) bool {
	preimage, ok := c.Preimage()
	if !ok {
		return false
	}
	var got [20]byte
	if htlc.HashAlgorithm() == witness.PaymentHashBlake2b {
		got = hostvm.Blake2b160(preimage)
	} else {
		got = hostvm.Sha256_160(preimage)
	}
	return got == [20]byte(htlc.PaymentHash()[0:20])
}

// loadInputAmount reads the group input's current value, as a token amount
// when a type script is attached or as the cell's native capacity
// otherwise, per spec §4.3's "new_amount initially equals the input's
// value" rule.
func loadInputAmount(h hostvm.Host, typeScript hostvm.CellType) (hostvm.Uint128, *hostvm.ScriptError) {
	if typeScript.Present {
		data, err := h.LoadCellData(0, hostvm.GroupInput)
		if err != nil {
			return hostvm.Uint128{}, hostvm.FromSysError(err)
		}
		if len(data) < 16 {
			return hostvm.Uint128{}, hostvm.NewScriptError(hostvm.CodeEncoding, "cell data shorter than a 128-bit amount")
		}
		return hostvm.Uint128FromLE16(data[0:16]), nil
	}
	cap, err := h.LoadCellCapacity(0, hostvm.GroupInput)
	if err != nil {
		return hostvm.Uint128{}, hostvm.FromSysError(err)
	}
	return hostvm.Uint128FromU64(cap), nil
}

// checkContinuation enforces spec §4.3's output-continuation invariant:
// the successor cell's lock args must commit to the HTLC list with index k
// removed, and its capacity or token amount must equal newAmount.
func checkContinuation(h hostvm.Host, script hostvm.Script, c witness.Commitment, k int, typeScript hostvm.CellType, newAmount hostvm.Uint128) *hostvm.ScriptError {
	successor := c.SuccessorScript(k)
	expectedArgs := hostvm.Blake2b160(successor)

	outputLock, err := h.LoadCellLock(0, hostvm.Output)
	if err != nil {
		return hostvm.FromSysError(err)
	}
	expected := hostvm.Script{CodeHash: script.CodeHash, HashType: script.HashType, Args: expectedArgs[:]}
	if !outputLock.Equal(expected) {
		return hostvm.NewScriptError(hostvm.CodeOutputLockError, "successor output lock does not match expected continuation")
	}

	if typeScript.Present {
		outCap, err := h.LoadCellCapacity(0, hostvm.Output)
		if err != nil {
			return hostvm.FromSysError(err)
		}
		inCap, err := h.LoadCellCapacity(0, hostvm.GroupInput)
		if err != nil {
			return hostvm.FromSysError(err)
		}
		if outCap != inCap {
			return hostvm.NewScriptError(hostvm.CodeOutputCapacityError, "successor capacity does not match input capacity")
		}

		outType, err := h.LoadCellType(0, hostvm.Output)
		if err != nil {
			return hostvm.FromSysError(err)
		}
		if !outType.Present || !outType.Script.Equal(typeScript.Script) {
			return hostvm.NewScriptError(hostvm.CodeOutputTypeError, "successor type script does not match input type script")
		}

		outData, err := h.LoadCellData(0, hostvm.Output)
		if err != nil {
			return hostvm.FromSysError(err)
		}
		if len(outData) < 16 {
			return hostvm.NewScriptError(hostvm.CodeEncoding, "successor cell data shorter than a 128-bit amount")
		}
		if !hostvm.Uint128FromLE16(outData[0:16]).Equal(newAmount) {
			return hostvm.NewScriptError(hostvm.CodeOutputUdtAmountError, "successor token amount does not match expected amount")
		}
		return nil
	}

	outCap, err := h.LoadCellCapacity(0, hostvm.Output)
	if err != nil {
		return hostvm.FromSysError(err)
	}
	if !hostvm.Uint128FromU64(outCap).Equal(newAmount) {
		return hostvm.NewScriptError(hostvm.CodeOutputCapacityError, "successor capacity does not match expected amount")
	}
	return nil
}
