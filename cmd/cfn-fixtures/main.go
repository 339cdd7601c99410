// Command cfn-fixtures generates and inspects the named conformance
// fixtures used by the funding-lock and commitment-lock test suites,
// mirroring the role cmd/gen-conformance-fixtures plays for the teacher's
// consensus vectors: bake real key material and signatures into on-disk
// fixtures rather than hand-building byte buffers at test time.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/contrun/cfn-scripts/fixturedb"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: cfn-fixtures <gen|list|show> [flags]")
		return 2
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "gen":
		return runGen(rest, stdout, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	case "show":
		return runShow(rest, stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: unknown subcommand %q\n", sub)
		return 2
	}
}

func runGen(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cfn-fixtures gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "fixtures.db", "path to the bbolt fixture store")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	db, err := fixturedb.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: open %s: %v\n", *dbPath, err)
		return 1
	}
	defer db.Close()

	fixtures, err := buildScenarios()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: build scenarios: %v\n", err)
		return 1
	}
	for _, f := range fixtures {
		if err := db.Put(f); err != nil {
			_, _ = fmt.Fprintf(stderr, "cfn-fixtures: put %s: %v\n", f.Name, err)
			return 1
		}
	}
	_, _ = fmt.Fprintf(stdout, "wrote %d fixtures to %s\n", len(fixtures), *dbPath)
	return 0
}

func runList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cfn-fixtures list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "fixtures.db", "path to the bbolt fixture store")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	db, err := fixturedb.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: open %s: %v\n", *dbPath, err)
		return 1
	}
	defer db.Close()

	names, err := db.List()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: list: %v\n", err)
		return 1
	}
	for _, n := range names {
		_, _ = fmt.Fprintln(stdout, n)
	}
	return 0
}

func runShow(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cfn-fixtures show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "fixtures.db", "path to the bbolt fixture store")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(stderr, "usage: cfn-fixtures show -db PATH NAME")
		return 2
	}
	name := fs.Arg(0)

	db, err := fixturedb.Open(*dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: open %s: %v\n", *dbPath, err)
		return 1
	}
	defer db.Close()

	f, found, err := db.Get(name)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: get %s: %v\n", name, err)
		return 1
	}
	if !found {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: no such fixture %q\n", name)
		return 1
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "cfn-fixtures: marshal %s: %v\n", name, err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, string(b))
	return 0
}
