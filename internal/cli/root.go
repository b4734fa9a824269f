package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. CI workflows branch on these, so they are stable.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "AI pull request reviewer",
	Long:  "Gavel gathers pull request context, runs it through an AI backend, and posts the review back to the PR thread.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gavel version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gavel version %s\n", version)
	},
}
