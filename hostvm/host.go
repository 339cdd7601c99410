package hostvm

// Source identifies which cell list a (index, source) query addresses, per
// spec §4.1.
type Source uint8

const (
	// GroupInput is the set of inputs guarded by the current script
	// invocation (i.e. cells in the script's own signing group).
	GroupInput Source = iota
	// Output is the transaction's output cells.
	Output
)

func (s Source) String() string {
	switch s {
	case GroupInput:
		return "GroupInput"
	case Output:
		return "Output"
	default:
		return "Source(?)"
	}
}

// SysKind is the closed set of host-adapter failures a Host implementation
// may return; anything else is a host/contract version mismatch (see
// fromSysError).
type SysKind uint8

const (
	SysIndexOutOfBound SysKind = iota
	SysItemMissing
	SysLengthNotEnough
	SysEncoding
)

// SysError is returned by Host methods for the closed set of host-adapter
// failures in spec §4.1.
type SysError struct {
	Kind SysKind
	Msg  string
}

func (e *SysError) Error() string { return e.Msg }

func sysErr(kind SysKind, msg string) *SysError { return &SysError{Kind: kind, Msg: msg} }

// IndexOutOfBoundErr builds the SysError a Host returns when (index, source)
// addresses a position at or past the end of the cell list.
func IndexOutOfBoundErr(msg string) error { return sysErr(SysIndexOutOfBound, msg) }

// ItemMissingErr builds the SysError a Host returns when the queried item
// (e.g. a cell's optional type script) does not exist.
func ItemMissingErr(msg string) error { return sysErr(SysItemMissing, msg) }

// LengthNotEnoughErr builds the SysError a Host returns when a caller-sized
// buffer cannot hold the full value.
func LengthNotEnoughErr(msg string) error { return sysErr(SysLengthNotEnough, msg) }

// EncodingErr builds the SysError a Host returns when stored bytes fail to
// decode as the expected molecule/packed structure.
func EncodingErr(msg string) error { return sysErr(SysEncoding, msg) }

// Script is a lock or type script identity: the code it runs under and the
// argument bytes bound to that code.
type Script struct {
	CodeHash [32]byte
	HashType byte
	Args     []byte
}

// Equal reports whether two scripts have the same code, hash type and args.
func (s Script) Equal(o Script) bool {
	return s.CodeHash == o.CodeHash && s.HashType == o.HashType && bytesEqual(s.Args, o.Args)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CellType is the optional type script attached to a cell; Present is false
// for a cell with no type script (load_cell_type returning ItemMissing).
type CellType struct {
	Present bool
	Script  Script
}

// Host is the abstract set of queries a cell script may issue against the
// transaction it is validating, per spec §4.1. Implementations (the real
// CKB-VM syscall layer, or hostvm/mockhost for tests) return SysError values
// from the closed set above; any other error is a programming bug.
type Host interface {
	// LoadScript returns the currently-executing script's own identity
	// (code hash, hash type, and the argument bytes the lock was created
	// with).
	LoadScript() (Script, error)

	// LoadTxHash returns the hash of the transaction being validated.
	LoadTxHash() ([32]byte, error)

	// LoadWitness returns the witness bytes at (index, source).
	LoadWitness(index int, source Source) ([]byte, error)

	// LoadInputSince returns the decoded since value of the input at
	// (index, source). source is meaningful only as GroupInput; querying
	// index 1 of GroupInput is how the entry points detect a second group
	// input (spec §4.2 step 1, §4.3 "no second group input").
	LoadInputSince(index int, source Source) (Since, error)

	// LoadCellCapacity returns the native-token capacity of the cell at
	// (index, source).
	LoadCellCapacity(index int, source Source) (uint64, error)

	// LoadCellData returns the data blob of the cell at (index, source).
	LoadCellData(index int, source Source) ([]byte, error)

	// LoadCellLock returns the lock script of the cell at (index, source).
	LoadCellLock(index int, source Source) (Script, error)

	// LoadCellType returns the optional type script of the cell at
	// (index, source).
	LoadCellType(index int, source Source) (CellType, error)

	// ExecCell transfers control to the cell identified by (codeHash,
	// hashType), passing args as NUL-terminated ASCII C-strings. On the
	// real VM this never returns on success; the mock implementation
	// returns the verifier's simulated decision instead so tests can
	// observe it.
	ExecCell(codeHash [32]byte, hashType byte, args []string) error
}
