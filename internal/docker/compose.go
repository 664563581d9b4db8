// compose.go drives the docker compose CLI plugin for stack lifecycle
// operations. Every function builds a "docker compose -p <project>
// -f <file> ..." invocation and runs it as a child process.
//
// Two execution modes exist:
//
//   - captured: output is collected and folded into the error on failure.
//     Used by setup and the scripted subcommands, where compose output is
//     only interesting when something went wrong.
//   - streamed: stdout/stderr are wired straight through to the user.
//     Used for pulls, updates, and log following, where compose's own
//     progress output is the user interface.
package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// Compose invokes docker compose for one project/file pair.
type Compose struct {
	// File is the path to the compose definition.
	File string

	// Project is the compose project name (-p), which namespaces the
	// stack's containers, network, and default volume names.
	Project string
}

// NewCompose returns a Compose runner for the given definition file and
// project name.
func NewCompose(file, project string) Compose {
	return Compose{File: file, Project: project}
}

// args builds the common argument prefix plus the subcommand.
func (c Compose) args(sub ...string) []string {
	base := []string{"compose", "-p", c.Project, "-f", c.File}
	return append(base, sub...)
}

// Pull pulls all images referenced by the compose definition, streaming
// progress to the terminal.
func (c Compose) Pull(ctx context.Context) error {
	return c.runStreamed(ctx, "pull")
}

// Up starts all services detached.
func (c Compose) Up(ctx context.Context) error {
	return c.runCaptured(ctx, "up", "-d")
}

// UpRecreate starts all services detached, recreating containers whose
// image changed. Used by the update operation after a pull.
func (c Compose) UpRecreate(ctx context.Context) error {
	return c.runStreamed(ctx, "up", "-d", "--remove-orphans")
}

// Down stops and removes the stack's containers and network. Volumes are
// always preserved - model weights and chat history survive teardown.
func (c Compose) Down(ctx context.Context) error {
	return c.runCaptured(ctx, "down", "--remove-orphans")
}

// Stop stops the stack's containers without removing them.
func (c Compose) Stop(ctx context.Context) error {
	return c.runCaptured(ctx, "stop")
}

// Start starts previously stopped containers.
func (c Compose) Start(ctx context.Context) error {
	return c.runCaptured(ctx, "start")
}

// Restart restarts the stack's containers.
func (c Compose) Restart(ctx context.Context) error {
	return c.runCaptured(ctx, "restart")
}

// Logs follows the log output of one service (or the whole stack when
// service is empty). This blocks until the context is cancelled or the
// user interrupts, matching the original log-tailing behavior.
func (c Compose) Logs(ctx context.Context, service string, tail int) error {
	sub := []string{"logs", "--follow"}
	if tail > 0 {
		sub = append(sub, "--tail", fmt.Sprintf("%d", tail))
	}
	if service != "" {
		sub = append(sub, service)
	}
	return c.runStreamed(ctx, sub...)
}

// RecentLogs prints the last tail lines of a service's logs without
// following. The interactive menu uses this so a log view returns to the
// menu instead of blocking on a follow.
func (c Compose) RecentLogs(ctx context.Context, service string, tail int) error {
	sub := []string{"logs", "--tail", fmt.Sprintf("%d", tail)}
	if service != "" {
		sub = append(sub, service)
	}
	return c.runStreamed(ctx, sub...)
}

// runCaptured executes docker compose, collecting output for the error
// message. Compose failures most commonly stem from daemon problems,
// hence the ExitDockerNotRunning classification.
func (c Compose) runCaptured(ctx context.Context, sub ...string) error {
	cmd := exec.CommandContext(ctx, "docker", c.args(sub...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker compose %s failed: %s", sub[0], trimOutput(output)),
			err,
		)
	}
	return nil
}

// runStreamed executes docker compose with stdout/stderr passed through.
func (c Compose) runStreamed(ctx context.Context, sub ...string) error {
	cmd := exec.CommandContext(ctx, "docker", c.args(sub...)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		// A log follow interrupted by the user is a clean exit, not a failure.
		if ctx.Err() != nil {
			return nil
		}
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker compose %s failed", sub[0]),
			err,
		)
	}
	return nil
}

// trimOutput normalizes subprocess output for inclusion in error messages.
func trimOutput(output []byte) string {
	return strings.TrimSpace(string(output))
}
