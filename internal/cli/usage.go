// usage.go implements the housekeeping commands: the disk-usage report,
// the GPU report, and the dangling-image prune.
package cli

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/sysinfo"
)

// NewUsageCommand creates the "usage" cobra command.
func NewUsageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show Docker disk usage and free host space",
		Long: `Report how much disk Docker is using for images, containers, and
volumes, plus the free space remaining on the host filesystem. Model
weights live in volumes, so that line dominates on a working stack.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(cmd.Context())
		},
	}
}

// usageReport is the JSON shape of the usage command output.
type usageReport struct {
	docker.UsageSummary
	HostFreeGB float64 `json:"hostFreeGb,omitempty"`
}

func runUsage(ctx context.Context) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	summary, err := docker.DiskUsage(ctx, cli)
	if err != nil {
		return err
	}

	report := usageReport{UsageSummary: summary}
	if freeGB, err := sysinfo.FreeSpaceGB("/"); err == nil {
		report.HostFreeGB = freeGB
	} else {
		VerboseLog("Host free-space measurement unavailable: %v", err)
	}

	if IsJSONOutput() {
		printJSON(report)
		return nil
	}

	fmt.Printf("Images:      %4d  %10s\n", summary.ImageCount, units.HumanSize(float64(summary.ImagesSize)))
	fmt.Printf("Containers:  %4d  %10s\n", summary.ContainerCount, units.HumanSize(float64(summary.ContainersSize)))
	fmt.Printf("Volumes:     %4d  %10s\n", summary.VolumeCount, units.HumanSize(float64(summary.VolumesSize)))
	if report.HostFreeGB > 0 {
		fmt.Printf("\nHost free space: %.1f GB\n", report.HostFreeGB)
	}
	return nil
}

// NewGPUCommand creates the "gpu" cobra command.
func NewGPUCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gpu",
		Short: "Show the host GPU report (nvidia-smi)",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runGPU(cmd.Context())
		},
	}
}

func runGPU(ctx context.Context) error {
	report, err := sysinfo.GPUReport(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]string{"report": report})
		return nil
	}

	fmt.Println(report)
	return nil
}

// NewPruneCommand creates the "prune" cobra command.
func NewPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove dangling images left behind by updates",
		Long: `Remove untagged (dangling) images. Stack updates leave the previous
image versions behind as dangling layers; pruning reclaims that space.
Tagged images are never touched.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd.Context())
		},
	}
}

func runPrune(ctx context.Context) error {
	fmt.Println("Removing dangling images...")
	deleted, reclaimed, err := docker.PruneImages(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"imagesDeleted":  deleted,
			"spaceReclaimed": reclaimed,
		})
		return nil
	}

	if deleted == 0 {
		fmt.Println("Nothing to prune.")
		return nil
	}
	fmt.Printf("Deleted %d image(s), reclaimed %s.\n", deleted, units.HumanSize(float64(reclaimed)))
	return nil
}
