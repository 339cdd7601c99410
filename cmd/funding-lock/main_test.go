package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/contrun/cfn-scripts/fixturedb"
	"github.com/contrun/cfn-scripts/hostvm"
)

func writeSampleFixture(t *testing.T) string {
	t.Helper()

	version := make([]byte, 8)
	outpoint := make([]byte, 36)
	pubkey := make([]byte, 32)
	sig := make([]byte, 65)

	w := make([]byte, 0, 141)
	w = append(w, version...)
	w = append(w, outpoint...)
	w = append(w, pubkey...)
	w = append(w, sig...)

	args := hostvm.Blake2b160(w[0:76])
	script := fixturedb.ScriptView{
		CodeHashHex: hex.EncodeToString(make([]byte, 32)),
		HashType:    1,
		ArgsHex:     hex.EncodeToString(args[:]),
	}

	f := fixturedb.Fixture{
		Name:             "inline-sample",
		Kind:             "funding-lock",
		Script:           script,
		TxHashHex:        hex.EncodeToString(make([]byte, 32)),
		GroupInputs:      []fixturedb.CellView{{Capacity: 1_000_000, Lock: script}},
		WitnessesHex:     []string{hex.EncodeToString(w)},
		SinceValues:      []uint64{0},
		ExpectedExitCode: 0,
	}

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRun_OK(t *testing.T) {
	path := writeSampleFixture(t)
	var out, errOut bytes.Buffer
	if code := run([]string{"-fixture", path}, &out, &errOut); code != 0 {
		t.Fatalf("run exited %d: %s", code, errOut.String())
	}
}

func TestRun_MissingFixtureFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 without -fixture, got %d", code)
	}
}

func TestRun_UnreadableFixturePath(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-fixture", "/nonexistent/path.json"}, &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 for an unreadable fixture, got %d", code)
	}
}
