// usage.go implements the disk-usage report, dangling-image prune, and
// volume existence check backing the maintenance operations.
package docker

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// UsageSummary aggregates Docker's disk usage report into the handful of
// numbers the maintenance menu displays.
type UsageSummary struct {
	// ImageCount and ImagesSize cover all images known to the daemon.
	// ImagesSize is the layer store size, so shared layers count once.
	ImageCount int   `json:"imageCount"`
	ImagesSize int64 `json:"imagesSize"`

	// ContainerCount and ContainersSize cover container writable layers.
	ContainerCount int   `json:"containerCount"`
	ContainersSize int64 `json:"containersSize"`

	// VolumeCount and VolumesSize cover named and anonymous volumes.
	// Model weights dominate this number on a RAG workstation.
	VolumeCount int   `json:"volumeCount"`
	VolumesSize int64 `json:"volumesSize"`
}

// DiskUsage queries the daemon for its disk usage breakdown. This is the
// SDK equivalent of "docker system df".
func DiskUsage(ctx context.Context, cli *Client) (UsageSummary, error) {
	du, err := cli.Inner().DiskUsage(ctx, types.DiskUsageOptions{})
	if err != nil {
		return UsageSummary{}, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to query Docker disk usage",
			err,
		)
	}

	summary := UsageSummary{
		ImageCount:     len(du.Images),
		ImagesSize:     du.LayersSize,
		ContainerCount: len(du.Containers),
		VolumeCount:    len(du.Volumes),
	}

	for _, c := range du.Containers {
		summary.ContainersSize += c.SizeRw
	}
	for _, v := range du.Volumes {
		if v.UsageData != nil && v.UsageData.Size > 0 {
			summary.VolumesSize += v.UsageData.Size
		}
	}

	return summary, nil
}

// PruneImages removes dangling images (untagged layers left behind by
// image updates) and reports how many were deleted and how much space
// was reclaimed.
func PruneImages(ctx context.Context) (deleted int, reclaimed uint64, err error) {
	cli, err := NewClient()
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = cli.Close() }()

	// dangling=true restricts the prune to untagged images, matching
	// "docker image prune" without --all. Tagged but unused images are
	// left alone - removing those is a deliberate user decision.
	report, err := cli.Inner().ImagesPrune(ctx, filters.NewArgs(
		filters.Arg("dangling", "true"),
	))
	if err != nil {
		return 0, 0, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to prune images",
			err,
		)
	}

	return len(report.ImagesDeleted), report.SpaceReclaimed, nil
}

// VolumeExists reports whether a named volume exists. Backup checks this
// up front so a missing volume produces a clear message instead of a
// cryptic docker run failure mid-archive.
func VolumeExists(ctx context.Context, cli *Client, name string) (bool, error) {
	_, err := cli.Inner().VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to inspect volume "+name,
			err,
		)
	}
	return true, nil
}
