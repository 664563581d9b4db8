// Package cli implements the cobra-based commands of the ragstack CLI.
//
// Each command lives in its own file within this package. Two entry
// points cover everything: "setup" runs the one-shot provisioning
// sequence, and "menu" runs the interactive maintenance loop. Every menu
// operation is also registered as a plain subcommand so it can be
// scripted; the menu dispatches to the same operation functions.
package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/config"
	"github.com/mmr-tortoise/ragstack/internal/model"
)

// Global flag variables bound to cobra persistent flags on the root
// command, available to every subcommand.
var (
	// jsonOutput switches command output to structured JSON.
	jsonOutput bool

	// verbose enables debug/trace output on stderr.
	verbose bool

	// configFile is the path to an alternate ragstack.jsonc. Empty means
	// the default location (optional).
	configFile string
)

// Version, Commit, and Date are injected from the main package, which
// receives them at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command performs no action of its own - it carries the global
// flags and help text. Functionality lives in the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ragstack",
		Short: "Local RAG stack manager (Ollama + Open WebUI)",
		Long: `ragstack stands up and maintains a two-container Retrieval-Augmented-
Generation stack on this machine: an Ollama model server and the Open WebUI
front end, wired together with Docker Compose.

Run "ragstack setup" once to provision everything, then "ragstack menu"
for routine maintenance - or call the individual subcommands directly.`,

		// Errors are formatted by Execute (text or JSON per --json), so
		// cobra's own error/usage printing is silenced.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		fmt.Sprintf("Path to config file (default: %s if present)", config.DefaultFile))

	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewMenuCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewModelsCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewRestartCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewBackupCommand())
	rootCmd.AddCommand(NewUsageCommand())
	rootCmd.AddCommand(NewGPUCommand())
	rootCmd.AddCommand(NewPruneCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into process exit
// codes. CLIError values carry their own code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// loadSettings resolves the effective settings for a command invocation:
// defaults, config file, environment.
func loadSettings() (config.Settings, error) {
	return config.Load(configFile)
}

// printError outputs an error message in text or JSON format based on
// the --json flag. Errors go to stderr either way - stdout is reserved
// for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			errObj["error"].(map[string]interface{})["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is on.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

// lineReader returns in as a buffered reader, reusing an existing one
// rather than wrapping it again. Double wrapping would read ahead into
// the inner buffer and drop input queued for later prompts.
func lineReader(in io.Reader) *bufio.Reader {
	if br, ok := in.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(in)
}
