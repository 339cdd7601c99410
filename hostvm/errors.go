// Package hostvm models the host virtual-machine boundary that a cell
// script is invoked across: the typed queries a script may issue, the
// closed set of errors those queries may return, and the exit codes a
// script's failures map to.
package hostvm

import "fmt"

// Code identifies one of the script's failure categories. The numeric
// value is the exit code the process returns; it must match spec §6
// exactly since the host decides transaction acceptance on it.
type Code int8

const (
	CodeOK Code = 0

	CodeIndexOutOfBound       Code = 1
	CodeItemMissing           Code = 2
	CodeLengthNotEnough       Code = 3
	CodeEncoding              Code = 4
	CodeMultipleInputs        Code = 5
	CodeInvalidSince          Code = 6
	CodeInvalidUnlockType     Code = 7
	CodeInvalidHtlcType       Code = 8
	CodeArgsLenError          Code = 9
	CodeWitnessLenError       Code = 10
	CodeEmptyWitnessArgsError Code = 11
	CodeWitnessHashError      Code = 12
	CodeOutputCapacityError   Code = 13
	CodeOutputLockError       Code = 14
	CodeOutputTypeError       Code = 15
	CodeOutputUdtAmountError  Code = 16
	CodePreimageError         Code = 17
	CodeAuthError             Code = 18
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeIndexOutOfBound:
		return "IndexOutOfBound"
	case CodeItemMissing:
		return "ItemMissing"
	case CodeLengthNotEnough:
		return "LengthNotEnough"
	case CodeEncoding:
		return "Encoding"
	case CodeMultipleInputs:
		return "MultipleInputs"
	case CodeInvalidSince:
		return "InvalidSince"
	case CodeInvalidUnlockType:
		return "InvalidUnlockType"
	case CodeInvalidHtlcType:
		return "InvalidHtlcType"
	case CodeArgsLenError:
		return "ArgsLenError"
	case CodeWitnessLenError:
		return "WitnessLenError"
	case CodeEmptyWitnessArgsError:
		return "EmptyWitnessArgsError"
	case CodeWitnessHashError:
		return "WitnessHashError"
	case CodeOutputCapacityError:
		return "OutputCapacityError"
	case CodeOutputLockError:
		return "OutputLockError"
	case CodeOutputTypeError:
		return "OutputTypeError"
	case CodeOutputUdtAmountError:
		return "OutputUdtAmountError"
	case CodePreimageError:
		return "PreimageError"
	case CodeAuthError:
		return "AuthError"
	default:
		return fmt.Sprintf("Code(%d)", int8(c))
	}
}

// ScriptError is the single error type both lock entry points return. A nil
// *ScriptError means the script exits 0.
type ScriptError struct {
	Code Code
	Msg  string
}

func (e *ScriptError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// ExitCode returns the process exit status for e, or 0 for a nil receiver.
func (e *ScriptError) ExitCode() int8 {
	if e == nil {
		return 0
	}
	return int8(e.Code)
}

func scriptErr(code Code, msg string) *ScriptError {
	return &ScriptError{Code: code, Msg: msg}
}

// NewScriptError builds a *ScriptError carrying code and msg. Entry points
// use this to report any of the non-host-adapter exit codes in spec §6
// (MultipleInputs, InvalidSince, WitnessHashError, and so on).
func NewScriptError(code Code, msg string) *ScriptError {
	return scriptErr(code, msg)
}

// FromSysError translates a host-adapter error into its script exit code.
// A SysError outside the closed set the Host interface promises indicates a
// host/contract version mismatch and is not recoverable. Entry points call
// this on every Host method's returned error.
func FromSysError(err error) *ScriptError {
	return fromSysError(err)
}

func fromSysError(err error) *ScriptError {
	se, ok := err.(*SysError)
	if !ok {
		panic(fmt.Sprintf("hostvm: unexpected host error %v", err))
	}
	switch se.Kind {
	case SysIndexOutOfBound:
		return scriptErr(CodeIndexOutOfBound, se.Msg)
	case SysItemMissing:
		return scriptErr(CodeItemMissing, se.Msg)
	case SysLengthNotEnough:
		return scriptErr(CodeLengthNotEnough, se.Msg)
	case SysEncoding:
		return scriptErr(CodeEncoding, se.Msg)
	default:
		panic(fmt.Sprintf("hostvm: unexpected sys error kind %v", se.Kind))
	}
}
