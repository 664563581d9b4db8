package cli

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/backup"
	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/model"
)

// NewBackupCommand creates the "backup" cobra command.
func NewBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Archive the stack's data volumes",
		Long: `Write a timestamped .tar.gz archive of each data volume (model store
and web UI state) into the backup directory.

Backups are taken through read-only mounts and are safe against a
running stack.

Examples:
  ragstack backup
  RAGSTACK_BACKUP_DIR=/mnt/nas/ragstack ragstack backup`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context())
		},
	}
}

func runBackup(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	// Verify the volumes exist before starting: archiving half a stack
	// and then failing on a typo'd volume name is worse than failing
	// up front.
	volumes := settings.Volumes()
	for _, vol := range volumes {
		exists, err := docker.VolumeExists(ctx, cli, vol)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("volume %q does not exist - has the stack been set up?", vol))
		}
	}

	fmt.Printf("Backing up %d volume(s) to %s...\n", len(volumes), settings.BackupDir)
	archiver := backup.NewArchiver(settings.BackupDir, settings.BackupImage)
	archives, err := archiver.ArchiveStack(ctx, volumes)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(archives)
		return nil
	}

	for _, a := range archives {
		fmt.Printf("  %s  (%s)\n", a.Path, units.HumanSize(float64(a.Size)))
	}
	fmt.Println("Backup complete.")
	return nil
}
