package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "microsig",
		Short: "Replay reactive scenarios",
		Long: `microsig runs reactive graphs described in YAML.

A scenario declares signals, computeds and effects, then a list of steps.
Each step writes signals in one turn; the effects depending on them run
once at the end of the turn and print what they read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	return rootCmd
}
