package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the stack's containers",
		Long: `Show each stack container with its current state, plus an aggregate
stack status: running, partial, stopped, or absent.

Examples:
  ragstack status
  ragstack status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

// statusReport is the JSON shape of the status command output.
type statusReport struct {
	Stack    string              `json:"stack"`
	Services []model.ServiceInfo `json:"services"`
}

func runStatus(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	services, err := docker.ListStackContainers(ctx, cli, settings.ProjectName)
	if err != nil {
		return err
	}

	aggregate := docker.AggregateStatus(services)

	if IsJSONOutput() {
		printJSON(statusReport{Stack: aggregate.String(), Services: services})
		return nil
	}

	fmt.Print(formatStatus(aggregate, services))
	return nil
}

// formatStatus renders the plain-text status table.
func formatStatus(aggregate model.StackStatus, services []model.ServiceInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Stack: %s\n", aggregate))

	if len(services) == 0 {
		b.WriteString("No containers found. Run \"ragstack setup\" to provision the stack.\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, svc := range services {
		marker := " "
		if svc.IsRunning() {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("  %s %-10s %-28s %s\n", marker, svc.ServiceName, svc.ContainerName, svc.Status))
	}
	return b.String()
}
