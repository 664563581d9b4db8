// stack.go implements the container lifecycle commands: start, stop,
// restart, and update. All four are thin wrappers around compose; update
// additionally pulls newer images first and recreates the containers so
// the new images take effect. Data lives in named volumes, so none of
// these operations lose models or chat history.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/docker"
)

// NewStartCommand creates the "start" cobra command.
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the stopped stack",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return withCompose(func(ctx context.Context, compose docker.Compose) error {
				fmt.Println("Starting the stack...")
				if err := compose.Start(ctx); err != nil {
					return err
				}
				fmt.Println("Stack started.")
				return nil
			})(cmd.Context())
		},
	}
}

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the stack without removing containers",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return withCompose(func(ctx context.Context, compose docker.Compose) error {
				fmt.Println("Stopping the stack...")
				if err := compose.Stop(ctx); err != nil {
					return err
				}
				fmt.Println("Stack stopped. Start it again with \"ragstack start\".")
				return nil
			})(cmd.Context())
		},
	}
}

// NewRestartCommand creates the "restart" cobra command.
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the stack's containers",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return withCompose(func(ctx context.Context, compose docker.Compose) error {
				fmt.Println("Restarting the stack...")
				if err := compose.Restart(ctx); err != nil {
					return err
				}
				fmt.Println("Stack restarted.")
				return nil
			})(cmd.Context())
		},
	}
}

// NewUpdateCommand creates the "update" cobra command.
func NewUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Pull newer images and recreate the containers",
		Long: `Pull the latest images for the stack's services and recreate any
container whose image changed. Named volumes survive the recreation, so
models and chat history are preserved.

Old image layers left dangling by the update can be reclaimed with
"ragstack prune".`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return withCompose(func(ctx context.Context, compose docker.Compose) error {
				fmt.Println("Pulling latest images...")
				if err := compose.Pull(ctx); err != nil {
					return err
				}
				fmt.Println("Recreating containers...")
				if err := compose.UpRecreate(ctx); err != nil {
					return err
				}
				fmt.Println("Stack updated. Reclaim old image layers with \"ragstack prune\".")
				return nil
			})(cmd.Context())
		},
	}
}

// withCompose loads settings, builds the compose handle, and hands it to
// op. The lifecycle commands differ only in the op body.
func withCompose(op func(ctx context.Context, compose docker.Compose) error) func(context.Context) error {
	return func(ctx context.Context) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		return op(ctx, docker.NewCompose(settings.ComposeFile, settings.ProjectName))
	}
}
