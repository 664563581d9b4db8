package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// defaultPingTimeout bounds the daemon ping so a paused or wedged Docker
// Desktop doesn't hang the CLI indefinitely.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client with socket auto-detection
// and ragstack-flavored errors.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()
//	if err := c.Ping(ctx); err != nil { /* Docker not running */ }
type Client struct {
	// inner is the underlying Docker SDK client. Wrapped rather than
	// embedded to keep the exposed surface small.
	inner *client.Client
}

// NewClient creates a Docker client. DOCKER_HOST is respected when set;
// otherwise known socket paths are probed per platform:
//
//   - Linux: /var/run/docker.sock
//   - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//
// Returns a model.CLIError with ExitDockerNotRunning when no socket is
// found or the client cannot be created.
func NewClient() (*Client, error) {
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning, "Docker socket not found", err)
	}
	return newClientWithHost(host)
}

// newClientWithHost creates a client for an explicit connection string.
// API version negotiation keeps us compatible across daemon versions.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost probes the known socket paths for the current platform
// and returns the connection string of the first that exists. Existence is
// checked with os.Stat - connectivity is Ping's job.
func detectDockerHost() (string, error) {
	var candidates []string

	switch runtime.GOOS {
	case "linux":
		candidates = []string{"/var/run/docker.sock"}
	case "darwin":
		candidates = []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, home+"/.docker/run/docker.sock")
		}
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v - is Docker running?", candidates)
}

// Ping verifies the daemon is reachable and responsive.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"Docker daemon is not responding - is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases the client's resources. Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not wrapped
// here. Callers should prefer Client methods where they exist.
func (c *Client) Inner() *client.Client {
	return c.inner
}

// CheckDockerBinary verifies the docker CLI itself is on PATH. The SDK
// talks to the daemon directly, but compose operations and the GPU probe
// shell out to the binary, so setup checks for it explicitly.
func CheckDockerBinary() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return model.WrapCLIError(
			model.ExitRequirementMissing,
			"docker not found in PATH - install Docker Engine (https://docs.docker.com/engine/install/)",
			err,
		)
	}
	return nil
}

// CheckComposePlugin verifies the compose CLI plugin is installed by
// running "docker compose version".
func CheckComposePlugin(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "compose", "version")
	if output, err := cmd.CombinedOutput(); err != nil {
		return model.WrapCLIError(
			model.ExitRequirementMissing,
			fmt.Sprintf("docker compose plugin not available: %s - install the compose plugin (https://docs.docker.com/compose/install/)", trimOutput(output)),
			err,
		)
	}
	return nil
}
