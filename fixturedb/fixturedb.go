// Package fixturedb persists named transaction fixtures — the cell sets,
// witnesses and expected exit code of one funding-lock or commitment-lock
// invocation — in a small embedded bbolt store, generalizing the bucket-
// per-concern layout of the teacher's node/store package to a single
// "fixtures_by_name" bucket keyed by fixture name.
package fixturedb

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/contrun/cfn-scripts/hostvm"
	"github.com/contrun/cfn-scripts/hostvm/mockhost"
)

var bucketFixtures = []byte("fixtures_by_name")

// ScriptView is the JSON-friendly encoding of an hostvm.Script.
type ScriptView struct {
	CodeHashHex string `json:"code_hash_hex"`
	HashType    byte   `json:"hash_type"`
	ArgsHex     string `json:"args_hex"`
}

// CellView is the JSON-friendly encoding of one mockhost.Cell.
type CellView struct {
	Capacity uint64      `json:"capacity"`
	Lock     ScriptView  `json:"lock"`
	Type     *ScriptView `json:"type,omitempty"`
	DataHex  string      `json:"data_hex"`
}

// Fixture is a complete, named transaction view for one lock-script
// invocation: the executing script's own identity, the cells and
// witnesses a mockhost.Host would serve, and the exit code the
// invocation is expected to produce.
type Fixture struct {
	Name             string     `json:"name"`
	Kind             string     `json:"kind"` // "funding-lock" or "commitment-lock"
	Script           ScriptView `json:"script"`
	TxHashHex        string     `json:"tx_hash_hex"`
	GroupInputs      []CellView `json:"group_inputs"`
	Outputs          []CellView `json:"outputs"`
	WitnessesHex     []string   `json:"witnesses_hex"`
	SinceValues      []uint64   `json:"since_values"`
	ExpectedExitCode int8       `json:"expected_exit_code"`
}

// Host builds an in-memory mockhost.Host serving f's cells and witnesses,
// ready to pass to fundinglock.Verify or commitmentlock.Verify.
func (f Fixture) Host() (*mockhost.Host, error) {
	script, err := f.Script.decode()
	if err != nil {
		return nil, fmt.Errorf("fixture %s: script: %w", f.Name, err)
	}
	txHash, err := decodeHash32(f.TxHashHex)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: tx_hash: %w", f.Name, err)
	}
	groupInputs, err := decodeCells(f.GroupInputs)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: group_inputs: %w", f.Name, err)
	}
	outputs, err := decodeCells(f.Outputs)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: outputs: %w", f.Name, err)
	}
	witnesses := make([][]byte, len(f.WitnessesHex))
	for i, h := range f.WitnessesHex {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: witness %d: %w", f.Name, i, err)
		}
		witnesses[i] = b
	}
	sinces := make([]hostvm.Since, len(f.SinceValues))
	for i, v := range f.SinceValues {
		sinces[i] = hostvm.NewSince(v)
	}
	return &mockhost.Host{
		Script:      script,
		TxHash:      txHash,
		GroupInputs: groupInputs,
		Outputs:     outputs,
		Witnesses:   witnesses,
		Since:       sinces,
	}, nil
}

func (s ScriptView) decode() (hostvm.Script, error) {
	codeHash, err := decodeHash32(s.CodeHashHex)
	if err != nil {
		return hostvm.Script{}, err
	}
	args, err := hex.DecodeString(s.ArgsHex)
	if err != nil {
		return hostvm.Script{}, err
	}
	return hostvm.Script{CodeHash: codeHash, HashType: s.HashType, Args: args}, nil
}

func decodeCells(views []CellView) ([]mockhost.Cell, error) {
	out := make([]mockhost.Cell, len(views))
	for i, v := range views {
		lock, err := v.Lock.decode()
		if err != nil {
			return nil, fmt.Errorf("cell %d: lock: %w", i, err)
		}
		data, err := hex.DecodeString(v.DataHex)
		if err != nil {
			return nil, fmt.Errorf("cell %d: data: %w", i, err)
		}
		cell := mockhost.Cell{Capacity: v.Capacity, Lock: lock, Data: data}
		if v.Type != nil {
			typeScript, err := v.Type.decode()
			if err != nil {
				return nil, fmt.Errorf("cell %d: type: %w", i, err)
			}
			cell.Type = &typeScript
		}
		out[i] = cell
	}
	return out, nil
}

func decodeHash32(h string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(h)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// DB is a bbolt-backed store of named Fixture records.
type DB struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the fixture store at path.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFixtures)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &DB{db: bdb}, nil
}

// Close closes the underlying bbolt database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Put stores f under its own Name.
func (d *DB) Put(f Fixture) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fixture %s: %w", f.Name, err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).Put([]byte(f.Name), b)
	})
}

// Get loads the fixture named name, reporting false if it does not exist.
func (d *DB) Get(name string) (Fixture, bool, error) {
	var out Fixture
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFixtures).Get([]byte(name))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &out); err != nil {
			return fmt.Errorf("decode fixture %s: %w", name, err)
		}
		found = true
		return nil
	})
	return out, found, err
}

// List returns every fixture name currently stored, in bbolt's key order.
func (d *DB) List() ([]string, error) {
	var names []string
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
