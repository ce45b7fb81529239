// Package cli provides the command-line interface for ucitap.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeljk13/ucitap/internal/cli/commands"
	"github.com/joeljk13/ucitap/internal/cli/plugins"
	"github.com/joeljk13/ucitap/internal/logging"
)

// Execute runs the root command and returns the exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		// Skip flags (start with -)
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			// Check if it's a known built-in command
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				// Try to find and execute a plugin
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					// Plugin found - execute it with remaining args
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// Plugin not found - will fall through to Cobra which will show error
			}
		}
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Ctrl-C lands here once the context is canceled
		if errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(os.Stderr, "Interrupted")
			return 130
		}
		// Check if this was an unknown command that could be a plugin
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					// Show helpful plugin error message
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "ucitap",
		Short: "Pull search depth and time out of chess engine logs",
		Long: `ucitap filters chess engine output down to the search progress numbers.

Engines talking UCI print "info" lines while they think. ucitap keeps
the lines that carry a full set of marker values (depth and time by
default) and prints just those values, one record per line:

  stockfish < session.uci | ucitap
  12 307
  13 512

Run with no command to filter stdin to stdout. Subcommands read files,
globs, gzipped logs, and CloudWatch Logs groups, print aggregate search
statistics, and explain lines that fail to match.

PLUGINS:
  ucitap supports plugins for extended functionality. Plugins are standalone
  binaries named ucitap-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the ucitap binary
    2. ~/.ucitap/plugins/
    3. Anywhere in PATH

  Available plugins:
    watch    Continuous engine log following (https://github.com/joeljk13/ucitap-watch)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.NewContext(ctx, logging.New(debug)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunDefault(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	// Add subcommands
	rootCmd.AddCommand(commands.NewExtractCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
