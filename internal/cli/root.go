// Package cli defines the Cobra command tree for the memweave CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "memweave",
	Short: "Auto-linking memory and session tracking for software projects",
	Long: `Memweave stores memories and tasks for a project, discovers the
relationships between them automatically, and tracks work sessions,
summarizing the significant ones into new memories.

Run 'memweave init' in any project directory to get started.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newInitCmd(),
		newRememberCmd(),
		newTaskCmd(),
		newListCmd(),
		newLinksCmd(),
		newEnrichCmd(),
		newSessionsCmd(),
		newStatusCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("memweave %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
