// Package auth invokes the external signature-verification cell both lock
// scripts delegate to, generalizing the teacher's pluggable
// crypto.CryptoProvider boundary into "the provider is always an external
// cell, selected by a baked-in code hash" (spec.md §6/§9: signature
// verification itself is a Non-goal, the auth verifier is a black box).
package auth

import (
	"encoding/hex"

	"github.com/contrun/cfn-scripts/hostvm"
)

// AlgorithmIDCkb is the auth verifier's algorithm id for a plain CKB
// signature, the only one either lock script presents.
const AlgorithmIDCkb = 0

// CodeHash identifies the auth verifier cell exec_cell transfers control
// to. This is a build-time constant of the deployment, not a per-script
// argument, mirroring the reference's generated auth_code_hash.rs include.
var CodeHash = [32]byte{}

// HashType is the script hash type the auth verifier cell is looked up
// under. The reference uses ScriptHashType::Data1.
const HashType byte = 2 // ckb_types::core::ScriptHashType::Data1

// Verify hex-encodes the algorithm id, signature, message and pubkey hash
// as NUL-terminated ASCII strings and calls exec_cell on the auth
// verifier, matching spec.md §4.2 step 7 / §4.3's final step. A non-nil
// return is always *hostvm.ScriptError with CodeAuthError: on the real VM
// exec_cell never returns on success, so any returned error means the
// verifier rejected the call or the tail-call itself failed.
func Verify(h hostvm.Host, signature, message, pubkeyHash []byte) *hostvm.ScriptError {
	args := []string{
		hex.EncodeToString([]byte{AlgorithmIDCkb}),
		hex.EncodeToString(signature),
		hex.EncodeToString(message),
		hex.EncodeToString(pubkeyHash),
	}
	if err := h.ExecCell(CodeHash, HashType, args); err != nil {
		return hostvm.NewScriptError(hostvm.CodeAuthError, err.Error())
	}
	return nil
}
