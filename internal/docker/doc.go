// Package docker provides the container-runtime integrations for the
// ragstack CLI.
//
// Two access paths are used side by side, each where it fits best:
//
//   - The Docker Engine SDK (github.com/docker/docker/client) for queries
//     and point operations: daemon ping with socket auto-detection,
//     label-filtered container listing, disk usage, image pruning, and
//     volume inspection.
//   - The docker CLI via os/exec for compose operations (pull, up, down,
//     stop, start, restart, logs). Compose is a CLI plugin with no
//     supported Go API, and the plugin's own output (progress bars, log
//     multiplexing) is exactly what users expect to see.
package docker
