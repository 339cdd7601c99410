package main

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestRun_GenThenListThenShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fixtures.db")

	var out, errOut bytes.Buffer
	if code := run([]string{"gen", "-db", dbPath}, &out, &errOut); code != 0 {
		t.Fatalf("gen exited %d: %s", code, errOut.String())
	}

	out.Reset()
	if code := run([]string{"list", "-db", dbPath}, &out, &errOut); code != 0 {
		t.Fatalf("list exited %d: %s", code, errOut.String())
	}
	if out.Len() == 0 {
		t.Fatalf("expected list to print at least one fixture name")
	}

	out.Reset()
	if code := run([]string{"show", "-db", dbPath, "S1-funding-cooperative-spend"}, &out, &errOut); code != 0 {
		t.Fatalf("show exited %d: %s", code, errOut.String())
	}
	if out.Len() == 0 {
		t.Fatalf("expected show to print fixture JSON")
	}
}

func TestRun_UnknownSubcommand(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"bogus"}, &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 for an unknown subcommand, got %d", code)
	}
}

func TestRun_NoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Fatalf("expected exit code 2 with no subcommand, got %d", code)
	}
}
