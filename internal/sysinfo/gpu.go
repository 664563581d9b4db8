package sysinfo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// gpuProbeTimeout bounds the throwaway-container GPU check. Pulling the
// probe image can take a while on first run, so this is generous.
const gpuProbeTimeout = 5 * time.Minute

// HasNvidiaSMI reports whether nvidia-smi is on PATH. This is the cheap
// first-line check - its absence means no NVIDIA driver is installed and
// the container probe would fail with a less helpful message.
func HasNvidiaSMI() bool {
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}

// ProbeGPUPassthrough verifies that containers can reach the GPU by
// running nvidia-smi inside a throwaway container with --gpus all.
// This is the authoritative test: it exercises the NVIDIA container
// toolkit end to end, not just the host driver.
//
// Returns a CLIError with ExitRequirementMissing and a remediation hint
// when the probe fails.
func ProbeGPUPassthrough(ctx context.Context, probeImage string) error {
	probeCtx, cancel := context.WithTimeout(ctx, gpuProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, "docker",
		"run", "--rm", "--gpus", "all", probeImage, "nvidia-smi")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitRequirementMissing,
			fmt.Sprintf(
				"GPU passthrough test failed: %s\nInstall the NVIDIA container toolkit and restart Docker (https://docs.nvidia.com/datacenter/cloud-native/container-toolkit/latest/install-guide.html)",
				strings.TrimSpace(string(output)),
			),
			err,
		)
	}
	return nil
}

// GPUReport runs nvidia-smi on the host and returns its output verbatim.
// Used by the maintenance menu's GPU usage view.
func GPUReport(ctx context.Context) (string, error) {
	if !HasNvidiaSMI() {
		return "", model.NewCLIError(
			model.ExitRequirementMissing,
			"nvidia-smi not found in PATH - install the NVIDIA driver to see GPU usage",
		)
	}

	cmd := exec.CommandContext(ctx, "nvidia-smi")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("nvidia-smi failed: %s", strings.TrimSpace(string(output))),
			err,
		)
	}
	return string(output), nil
}
