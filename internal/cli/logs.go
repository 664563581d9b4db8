package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/model"
)

// NewLogsCommand creates the "logs" cobra command.
func NewLogsCommand() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Follow the logs of a stack service",
		Long: `Stream the logs of one stack service until interrupted.

The service must be defined in the compose file (ollama or webui with
the stock stack).

Examples:
  ragstack logs ollama
  ragstack logs webui --tail 50`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd.Context(), args[0], tail)
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 100, "Number of historical lines to show before following")

	return cmd
}

func runLogs(ctx context.Context, service string, tail int) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if err := validateService(settings.ComposeFile, service); err != nil {
		return err
	}

	compose := docker.NewCompose(settings.ComposeFile, settings.ProjectName)
	return compose.Logs(ctx, service, tail)
}

// validateService rejects service names the compose file doesn't define,
// so a typo produces a one-line error instead of an empty log stream. If
// the compose file can't be read the name is passed through and compose
// itself reports the problem.
func validateService(composeFile, service string) error {
	cf, err := docker.LoadComposeFile(composeFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			VerboseLog("Could not parse %s: %v", composeFile, err)
		}
		return nil
	}

	if !cf.HasService(service) {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unknown service %q (defined services: %s)",
				service, strings.Join(cf.ServiceNames(), ", ")))
	}
	return nil
}
