package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/model"
	"github.com/mmr-tortoise/ragstack/internal/ollama"
)

// NewModelsCommand creates the "models" command group: list, pull, and
// remove operate on the model server's local model store.
func NewModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model server's local models",
		Long: `List, pull, and remove models on the model server.

Examples:
  ragstack models list
  ragstack models pull mistral:7b
  ragstack models remove llama3.1:8b`,
	}

	cmd.AddCommand(newModelsListCommand())
	cmd.AddCommand(newModelsPullCommand())
	cmd.AddCommand(newModelsRemoveCommand())

	return cmd
}

func newModelsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed models",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsList(cmd.Context())
		},
	}
}

func newModelsPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <model>",
		Short: "Pull a model from the registry",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsPull(cmd.Context(), args[0])
		},
	}
}

func newModelsRemoveCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove an installed model",
		Long: `Remove a model from the model server's local store.

Removal is destructive (the weights have to be re-downloaded to get the
model back), so it asks for confirmation unless --force is given.`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsRemove(cmd.Context(), args[0], force, cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove without confirmation")

	return cmd
}

func runModelsList(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	models, err := ollama.NewClient(settings.OllamaURL).ListModels(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(models)
		return nil
	}

	if len(models) == 0 {
		fmt.Println("No models installed.")
		return nil
	}

	fmt.Printf("%-40s %10s  %s\n", "NAME", "SIZE", "MODIFIED")
	for _, m := range models {
		modified := ""
		if !m.ModifiedAt.IsZero() {
			modified = m.ModifiedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-40s %10s  %s\n", m.Name, units.HumanSize(float64(m.Size)), modified)
	}
	return nil
}

func runModelsPull(ctx context.Context, name string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := model.ValidateModelName(name); err != nil {
		return err
	}

	fmt.Printf("Pulling %q...\n", name)
	if err := ollama.NewClient(settings.OllamaURL).PullModel(ctx, name, pullProgressPrinter()); err != nil {
		return err
	}
	fmt.Printf("\n%s pulled.\n", name)
	return nil
}

func runModelsRemove(ctx context.Context, name string, force bool, stdin io.Reader) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := model.ValidateModelName(name); err != nil {
		return err
	}

	if !force && !confirmRemoval(stdin, name) {
		return model.NewCLIError(model.ExitUserCancelled, "model removal cancelled")
	}

	if err := ollama.NewClient(settings.OllamaURL).DeleteModel(ctx, name); err != nil {
		return err
	}
	fmt.Printf("%s removed.\n", name)
	return nil
}

// confirmRemoval asks for explicit confirmation of a destructive model
// removal. Only the literal answer "yes" confirms - a bare "y" does not,
// mirroring docker's own convention for irreversible operations.
func confirmRemoval(in io.Reader, name string) bool {
	fmt.Printf("Remove model %q? This cannot be undone. Type \"yes\" to confirm: ", name)
	line, err := lineReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}
