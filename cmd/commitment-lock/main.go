// Command commitment-lock runs the commitment-lock entry point against a
// JSON transaction fixture, exiting with the same code a real CKB-VM
// invocation of the lock script would produce.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/contrun/cfn-scripts/commitmentlock"
	"github.com/contrun/cfn-scripts/fixturedb"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("commitment-lock", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fixturePath := fs.String("fixture", "", "path to a JSON fixturedb.Fixture file")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *fixturePath == "" {
		_, _ = fmt.Fprintln(stderr, "commitment-lock: -fixture is required")
		return 2
	}

	logger := log.New(stderr, "commitment-lock: ", 0)

	raw, err := os.ReadFile(*fixturePath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "commitment-lock: read fixture: %v\n", err)
		return 2
	}
	var f fixturedb.Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		_, _ = fmt.Fprintf(stderr, "commitment-lock: parse fixture: %v\n", err)
		return 2
	}

	host, err := f.Host()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "commitment-lock: build host: %v\n", err)
		return 2
	}

	if *logLevel == "debug" || *logLevel == "verbose" {
		logger.Printf("loaded fixture %q: %d group input(s), %d output(s)", f.Name, len(f.GroupInputs), len(f.Outputs))
	}

	scriptErr := commitmentlock.Verify(host)
	exitCode := scriptErr.ExitCode()
	if scriptErr != nil {
		logger.Printf("exit %d: %v", exitCode, scriptErr)
	} else {
		_, _ = fmt.Fprintln(stdout, "ok")
	}
	return int(exitCode)
}
