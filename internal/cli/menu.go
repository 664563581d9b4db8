// menu.go implements the interactive maintenance menu. Each entry is a
// menuOption in a command table; the loop prints the table, reads a
// selection, dispatches, and repeats. A failing operation reports its
// error and returns to the menu rather than terminating the process -
// only option 0 (or EOF on stdin) leaves the loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/ollama"
)

// menuTailLines is how much log history the menu's log views show.
const menuTailLines = 100

// menuOption is one entry in the maintenance menu's command table.
type menuOption struct {
	// Key is the string the user types to select the option.
	Key string

	// Label is the menu line describing the option.
	Label string

	// Run executes the option. A returned error is reported and the menu
	// continues.
	Run func(ctx context.Context) error
}

// NewMenuCommand creates the "menu" cobra command.
func NewMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive maintenance menu",
		Long: `Run the interactive maintenance menu: stack status, logs, model
management, lifecycle operations, backup, and housekeeping, all in one
numbered loop. Every entry is also available as a plain subcommand for
scripting.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			return runMenu(cmd.Context(), in, os.Stdout, defaultMenuOptions(in))
		},
	}
}

// defaultMenuOptions builds the full command table. The prompting
// options share the menu's reader so buffered input is not lost between
// the selection and the follow-up prompt.
func defaultMenuOptions(in *bufio.Reader) []menuOption {
	return []menuOption{
		{Key: "1", Label: "Stack status", Run: runStatus},
		{Key: "2", Label: "Model server logs", Run: menuLogs("ollama")},
		{Key: "3", Label: "Web UI logs", Run: menuLogs("webui")},
		{Key: "4", Label: "List installed models", Run: runModelsList},
		{Key: "5", Label: "Pull a model", Run: menuPullModel(in)},
		{Key: "6", Label: "Remove a model", Run: menuRemoveModel(in)},
		{Key: "7", Label: "Restart the stack", Run: menuRestart},
		{Key: "8", Label: "Stop the stack", Run: menuStop},
		{Key: "9", Label: "Start the stack", Run: menuStart},
		{Key: "10", Label: "Update to latest images", Run: menuUpdate},
		{Key: "11", Label: "Back up data volumes", Run: runBackup},
		{Key: "12", Label: "Disk usage report", Run: runUsage},
		{Key: "13", Label: "GPU report", Run: runGPU},
		{Key: "14", Label: "Prune dangling images", Run: runPrune},
		{Key: "15", Label: "Show access info", Run: menuAccessInfo},
	}
}

// runMenu drives the selection loop until the user exits.
func runMenu(ctx context.Context, in *bufio.Reader, out io.Writer, opts []menuOption) error {
	table := make(map[string]menuOption, len(opts))
	for _, opt := range opts {
		table[opt.Key] = opt
	}

	for {
		printMenu(out, opts)
		fmt.Fprint(out, "Select an option: ")

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			// EOF on stdin ends the session like an explicit exit.
			fmt.Fprintln(out)
			return nil
		}
		choice := strings.TrimSpace(line)

		if choice == "0" {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		opt, ok := table[choice]
		if !ok {
			fmt.Fprintf(out, "Invalid option: %q\n", choice)
			continue
		}

		fmt.Fprintln(out)
		if err := opt.Run(ctx); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}

		fmt.Fprint(out, "\nPress Enter to continue...")
		if _, err := in.ReadString('\n'); err != nil {
			fmt.Fprintln(out)
			return nil
		}
	}
}

// printMenu renders the command table.
func printMenu(out io.Writer, opts []menuOption) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== ragstack maintenance ===")
	for _, opt := range opts {
		fmt.Fprintf(out, "  %2s) %s\n", opt.Key, opt.Label)
	}
	fmt.Fprintln(out, "   0) Exit")
}

// menuLogs returns a Run function showing recent logs of one service.
func menuLogs(service string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		compose := docker.NewCompose(settings.ComposeFile, settings.ProjectName)
		return compose.RecentLogs(ctx, service, menuTailLines)
	}
}

// menuPullModel prompts for a model name and pulls it.
func menuPullModel(in *bufio.Reader) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		name, ok := promptLine(in, "Model to pull (e.g. mistral:7b): ")
		if !ok || name == "" {
			fmt.Println("No model name given.")
			return nil
		}
		return runModelsPull(ctx, name)
	}
}

// menuRemoveModel prompts for a model name and removes it after the
// usual confirmation.
func menuRemoveModel(in *bufio.Reader) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		name, ok := promptLine(in, "Model to remove: ")
		if !ok || name == "" {
			fmt.Println("No model name given.")
			return nil
		}
		return runModelsRemove(ctx, name, false, in)
	}
}

func menuRestart(ctx context.Context) error {
	return withCompose(func(ctx context.Context, compose docker.Compose) error {
		fmt.Println("Restarting the stack...")
		return compose.Restart(ctx)
	})(ctx)
}

func menuStop(ctx context.Context) error {
	return withCompose(func(ctx context.Context, compose docker.Compose) error {
		fmt.Println("Stopping the stack...")
		return compose.Stop(ctx)
	})(ctx)
}

func menuStart(ctx context.Context) error {
	return withCompose(func(ctx context.Context, compose docker.Compose) error {
		fmt.Println("Starting the stack...")
		return compose.Start(ctx)
	})(ctx)
}

func menuUpdate(ctx context.Context) error {
	return withCompose(func(ctx context.Context, compose docker.Compose) error {
		fmt.Println("Pulling latest images...")
		if err := compose.Pull(ctx); err != nil {
			return err
		}
		fmt.Println("Recreating containers...")
		return compose.UpRecreate(ctx)
	})(ctx)
}

// menuAccessInfo prints the stack's URLs and the model server version if
// it is reachable.
func menuAccessInfo(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	fmt.Printf("  Web UI:            %s\n", settings.WebUIURL)
	fmt.Printf("  Model server API:  %s\n", settings.OllamaURL)

	if v, err := ollama.NewClient(settings.OllamaURL).Version(ctx); err == nil {
		fmt.Printf("  Model server:      version %s\n", v)
	} else {
		fmt.Println("  Model server:      not reachable")
	}
	return nil
}

// promptLine prints a prompt and reads one trimmed line. ok is false on
// EOF with no input.
func promptLine(in *bufio.Reader, prompt string) (answer string, ok bool) {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
