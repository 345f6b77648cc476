// Package main provides the interview_agent CLI: the HTTP API server plus offline
// planning and simulation tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "interview_agent",
		Short:         "Rule-based mock interview planner",
		Long:          "interview_agent runs deterministic mock interviews built from a candidate profile, over a REST API or offline from a script.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newPlanCmd(), newSimulateCmd(), newTokenCmd())
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
