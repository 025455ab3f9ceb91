// Package commands provides the CLI commands for the matchcore tool.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"martianoff/matchcore/internal/config"
	"martianoff/matchcore/internal/driver"
)

var (
	configPath string
	verbose    bool
	dump       bool
)

// errDiagnostics makes the process exit 1 after the report was printed.
var errDiagnostics = errors.New("pattern diagnostics reported")

var rootCmd = &cobra.Command{
	Use:   "matchcore",
	Short: "Structural pattern matching checker and lowerer",
	Long: `matchcore type checks the case clauses of a match statement and lowers
them into a control-flow graph of runtime tests.

Usage:
  matchcore check fixture.yaml    Print the narrowing of each clause
  matchcore lower fixture.yaml    Print the lowered control-flow graph
  matchcore version               Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a matchcore config file (default $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace pipeline stages to stderr")
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "Dump raw results")
}

// Execute runs the root command.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	configPath, verbose, dump = "", false, false
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	log.SetOutput(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// newPipeline resolves the configuration and applies --verbose.
func newPipeline() (*driver.Pipeline, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
		log.Printf("config: %d self-matching, %d non-sequence class(es)", len(cfg.SelfMatchTypes), len(cfg.NonSequenceTypes))
	}
	return driver.New(cfg), nil
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                5,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func dumpTo(w io.Writer, v ...any) {
	if dump {
		dumper.Fdump(w, v...)
	}
}
