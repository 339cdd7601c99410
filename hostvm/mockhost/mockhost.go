// Package mockhost is an in-memory hostvm.Host used by tests and by the
// cmd/cfn-fixtures generator to assemble a transaction view without a real
// CKB-VM. It generalizes the teacher's per-test byte-buffer builders
// (encodeHTLCCovenantData, encodeHTLCClaimPayload) into one reusable
// fixture type.
package mockhost

import (
	"github.com/contrun/cfn-scripts/hostvm"
)

// Cell is one entry of a GroupInput or Output cell list.
type Cell struct {
	Capacity uint64
	Lock     hostvm.Script
	Type     *hostvm.Script // nil means no type script
	Data     []byte
}

// AuthCall records one invocation of ExecCell, for assertions in tests.
type AuthCall struct {
	CodeHash [32]byte
	HashType byte
	Args     []string
}

// Host is a fully in-memory, single-group-input transaction view.
type Host struct {
	Script      hostvm.Script
	TxHash      [32]byte
	GroupInputs []Cell
	Outputs     []Cell
	Witnesses   []([]byte) // indexed like GroupInputs
	Since       []hostvm.Since

	// VerifyResult controls what ExecCell reports back, standing in for
	// the external auth-verifier cell's exit status.
	VerifyResult error

	Calls []AuthCall
}

func (h *Host) LoadScript() (hostvm.Script, error) {
	return h.Script, nil
}

func (h *Host) LoadTxHash() ([32]byte, error) {
	return h.TxHash, nil
}

func (h *Host) cellList(source hostvm.Source) []Cell {
	if source == hostvm.Output {
		return h.Outputs
	}
	return h.GroupInputs
}

func (h *Host) LoadWitness(index int, source hostvm.Source) ([]byte, error) {
	if source != hostvm.GroupInput {
		return nil, hostvm.IndexOutOfBoundErr("mockhost: witnesses only modeled for GroupInput")
	}
	if index < 0 || index >= len(h.Witnesses) {
		return nil, hostvm.IndexOutOfBoundErr("mockhost: witness index out of bound")
	}
	return h.Witnesses[index], nil
}

func (h *Host) LoadInputSince(index int, source hostvm.Source) (hostvm.Since, error) {
	if source != hostvm.GroupInput {
		return 0, hostvm.IndexOutOfBoundErr("mockhost: since only modeled for GroupInput")
	}
	if index < 0 || index >= len(h.Since) {
		return 0, hostvm.IndexOutOfBoundErr("mockhost: since index out of bound")
	}
	return h.Since[index], nil
}

func (h *Host) cell(index int, source hostvm.Source) (Cell, error) {
	list := h.cellList(source)
	if index < 0 || index >= len(list) {
		return Cell{}, hostvm.IndexOutOfBoundErr("mockhost: cell index out of bound")
	}
	return list[index], nil
}

func (h *Host) LoadCellCapacity(index int, source hostvm.Source) (uint64, error) {
	c, err := h.cell(index, source)
	if err != nil {
		return 0, err
	}
	return c.Capacity, nil
}

func (h *Host) LoadCellData(index int, source hostvm.Source) ([]byte, error) {
	c, err := h.cell(index, source)
	if err != nil {
		return nil, err
	}
	return c.Data, nil
}

func (h *Host) LoadCellLock(index int, source hostvm.Source) (hostvm.Script, error) {
	c, err := h.cell(index, source)
	if err != nil {
		return hostvm.Script{}, err
	}
	return c.Lock, nil
}

func (h *Host) LoadCellType(index int, source hostvm.Source) (hostvm.CellType, error) {
	c, err := h.cell(index, source)
	if err != nil {
		return hostvm.CellType{}, err
	}
	if c.Type == nil {
		return hostvm.CellType{Present: false}, nil
	}
	return hostvm.CellType{Present: true, Script: *c.Type}, nil
}

func (h *Host) ExecCell(codeHash [32]byte, hashType byte, args []string) error {
	h.Calls = append(h.Calls, AuthCall{CodeHash: codeHash, HashType: hashType, Args: append([]string(nil), args...)})
	return h.VerifyResult
}
