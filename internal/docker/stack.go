// stack.go discovers and summarizes the containers belonging to the RAG
// stack. Discovery is label-based: docker compose tags every container it
// creates with "com.docker.compose.project", so filtering on that label
// with the configured project name yields exactly the stack's containers
// without any state file of our own.
package docker

import (
	"context"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// Compose-assigned labels used to attribute containers to the stack.
const (
	// labelComposeProject carries the compose project name.
	labelComposeProject = "com.docker.compose.project"

	// labelComposeService carries the service name from the compose file.
	labelComposeService = "com.docker.compose.service"
)

// ListStackContainers returns all containers (including stopped ones)
// belonging to the named compose project, sorted by service name for
// stable output.
func ListStackContainers(ctx context.Context, cli *Client, project string) ([]model.ServiceInfo, error) {
	// Filter server-side on the compose project label rather than listing
	// everything and filtering in Go.
	filterArgs := filters.NewArgs(
		filters.Arg("label", labelComposeProject+"="+project),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list stack containers",
			err,
		)
	}

	result := make([]model.ServiceInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToService(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ServiceName < result[j].ServiceName
	})
	return result, nil
}

// containerToService converts a Docker API container struct to the
// domain ServiceInfo. Pure mapping, no side effects.
func containerToService(c types.Container) model.ServiceInfo {
	// The API returns names with a leading "/" artifact that we strip.
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ServiceInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   c.Labels[labelComposeService],
		State:         c.State,
		Status:        c.Status,
		Image:         c.Image,
	}
}

// AggregateStatus derives the stack-level status from its containers.
//
//	no containers        → absent
//	all running          → running
//	some running         → partial
//	none running         → stopped
func AggregateStatus(services []model.ServiceInfo) model.StackStatus {
	if len(services) == 0 {
		return model.StatusAbsent
	}

	running := 0
	for _, s := range services {
		if s.IsRunning() {
			running++
		}
	}

	switch running {
	case 0:
		return model.StatusStopped
	case len(services):
		return model.StatusRunning
	default:
		return model.StatusPartial
	}
}

// AnyRunning reports whether at least one stack container is running.
// Setup uses this as its post-startup gate: one "Up" service means the
// stack came up at all, even if a sibling is still starting.
func AnyRunning(services []model.ServiceInfo) bool {
	for _, s := range services {
		if s.IsRunning() {
			return true
		}
	}
	return false
}
