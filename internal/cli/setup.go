// Package cli - setup.go implements the "ragstack setup" command.
//
// Setup is a linear sequence of gates: host requirement checks, a disk
// space check, teardown of any previous stack, image pull, startup,
// a bounded readiness poll against the model server, and provisioning of
// the embedding and primary models. Each gate is fatal on failure except
// where noted - the disk check downgrades to a confirmation prompt, and
// a primary-model pull failure prints remediation instead of aborting
// (the stack is usable for pulling models manually at that point).
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ragstack/internal/config"
	"github.com/mmr-tortoise/ragstack/internal/docker"
	"github.com/mmr-tortoise/ragstack/internal/model"
	"github.com/mmr-tortoise/ragstack/internal/ollama"
	"github.com/mmr-tortoise/ragstack/internal/retry"
	"github.com/mmr-tortoise/ragstack/internal/sysinfo"
)

// setupFlags holds the flag values for the setup command.
type setupFlags struct {
	// yes suppresses the low-disk confirmation prompt.
	yes bool

	// skipGPUCheck bypasses the GPU passthrough probe for CPU-only hosts.
	skipGPUCheck bool
}

// NewSetupCommand creates the "setup" cobra command.
func NewSetupCommand() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the RAG stack from scratch",
		Long: `Check host requirements, tear down any existing stack, pull images,
start the containers, wait for the model server, and provision the
embedding and primary models.

Setup is idempotent: an existing stack is torn down and recreated
(volumes, and therefore models and chat history, are preserved).

Examples:
  ragstack setup
  ragstack setup --yes --skip-gpu-check`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), flags, cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Continue without prompting on low disk space")
	cmd.Flags().BoolVar(&flags.skipGPUCheck, "skip-gpu-check", false, "Skip the GPU passthrough test (CPU-only hosts)")

	return cmd
}

// runSetup executes the full provisioning sequence.
func runSetup(ctx context.Context, flags *setupFlags, stdin io.Reader) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// Gate 1: privilege check - informational only, never blocks.
	if sysinfo.IsRoot() {
		fmt.Println("Warning: running as root. Consider adding your user to the docker group instead.")
	}

	// Gate 2: host requirements. Each failure is fatal with a hint.
	fmt.Println("Checking host requirements...")
	if err := docker.CheckDockerBinary(); err != nil {
		return err
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Docker daemon is up")

	if err := docker.CheckComposePlugin(ctx); err != nil {
		return err
	}
	VerboseLog("Compose plugin present")

	if flags.skipGPUCheck {
		fmt.Println("Skipping GPU passthrough test (--skip-gpu-check). The model server will run on CPU.")
	} else {
		fmt.Println("Testing GPU passthrough (this may pull a probe image on first run)...")
		if !sysinfo.HasNvidiaSMI() {
			return model.NewCLIError(model.ExitRequirementMissing,
				"nvidia-smi not found in PATH - install the NVIDIA driver, or rerun with --skip-gpu-check for CPU-only operation")
		}
		if err := sysinfo.ProbeGPUPassthrough(ctx, settings.GPUProbeImage); err != nil {
			return err
		}
		VerboseLog("GPU passthrough works")
	}

	// Gate 3: disk space. Below the threshold, ask before continuing;
	// at or above it, proceed silently.
	freeGB, err := sysinfo.FreeSpaceGB("/")
	if err != nil {
		// The measurement failing is not worth aborting over; the pull
		// will fail loudly on a genuinely full disk.
		VerboseLog("Disk space check unavailable: %v", err)
	} else {
		VerboseLog("Free disk space: %.1f GB (threshold %.1f GB)", freeGB, settings.DiskThresholdGB)
		if sysinfo.BelowThreshold(freeGB, settings.DiskThresholdGB) && !flags.yes {
			fmt.Printf("Only %.1f GB free (recommended: %.0f GB+). Models are large.\n",
				freeGB, settings.DiskThresholdGB)
			if !promptContinue(stdin, os.Stdout) {
				return model.NewCLIError(model.ExitDiskSpace, "setup cancelled: insufficient disk space")
			}
		}
	}

	compose := docker.NewCompose(settings.ComposeFile, settings.ProjectName)

	// Gate 4: unconditional teardown of any previous stack, so a rerun
	// never trips over port or name conflicts.
	fmt.Println("Removing any existing stack...")
	if err := compose.Down(ctx); err != nil {
		return err
	}

	// Gate 5: pull and start.
	fmt.Println("Pulling images...")
	if err := compose.Pull(ctx); err != nil {
		return err
	}
	fmt.Println("Starting the stack...")
	if err := compose.Up(ctx); err != nil {
		return err
	}

	// Give the containers a moment to register before the status check.
	retry.DefaultSleeper().Sleep(ctx, settings.SettleDelay())

	services, err := docker.ListStackContainers(ctx, cli, settings.ProjectName)
	if err != nil {
		return err
	}
	if !docker.AnyRunning(services) {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("no service came up - check the logs with %q", "ragstack logs ollama"))
	}

	// Gate 6: readiness poll against the model server API.
	oc := ollama.NewClient(settings.OllamaURL)
	fmt.Printf("Waiting for the model server at %s...\n", settings.OllamaURL)

	attempts, err := retry.Do(ctx,
		retry.FixedInterval(settings.ReadinessAttempts, settings.ReadinessInterval()),
		nil,
		func(ctx context.Context) error {
			_, verr := oc.Version(ctx)
			return verr
		})
	if err != nil {
		return model.WrapCLIError(model.ExitReadinessTimeout,
			fmt.Sprintf("model server did not become ready after %d attempts", settings.ReadinessAttempts),
			err)
	}
	VerboseLog("Model server ready after %d attempt(s)", attempts)

	// Gate 7: model provisioning. The embedding model is required for
	// document retrieval, so its failure is fatal. A primary-model pull
	// failure leaves a working stack that can pull models later, so it
	// prints remediation and continues.
	fmt.Printf("Ensuring embedding model %q...\n", settings.EmbeddingModel)
	res, err := ollama.EnsureModel(ctx, oc, settings.EmbeddingModel, pullProgressPrinter())
	if err != nil {
		return model.WrapCLIError(model.ExitModelFailed,
			fmt.Sprintf("failed to provision embedding model %q", settings.EmbeddingModel), err)
	}
	reportEnsure(res)

	fmt.Printf("Ensuring primary model %q...\n", settings.PrimaryModel)
	res, err = ollama.EnsureModel(ctx, oc, settings.PrimaryModel, pullProgressPrinter())
	if err != nil {
		fmt.Printf("Warning: could not pull %q: %v\n", settings.PrimaryModel, err)
		fmt.Printf("The stack is running. Pull it later with: ragstack models pull %s\n", settings.PrimaryModel)
	} else {
		reportEnsure(res)
	}

	// Final report - purely informational.
	fmt.Print(formatAccessInfo(settings))
	return nil
}

// promptContinue asks for confirmation and reports whether the user
// answered affirmatively. Anything but y/Y/yes declines.
func promptContinue(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Continue anyway? [y/N]: ")
	line, err := lineReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// reportEnsure prints the outcome of a model provisioning step. A pull
// leaves the progress line in place, so start fresh with a newline.
func reportEnsure(res ollama.EnsureResult) {
	if res.Skipped {
		fmt.Printf("  %s already present, skipping pull\n", res.Name)
	} else {
		fmt.Printf("\n  %s pulled\n", res.Name)
	}
}

// pullProgressPrinter returns a PullProgress callback rendering an
// in-place progress line, or nil in JSON mode where stray carriage
// returns would corrupt the output.
func pullProgressPrinter() ollama.PullProgress {
	if IsJSONOutput() {
		return nil
	}
	return func(status string, completed, total int64) {
		if total > 0 {
			fmt.Printf("\r  %s: %.1f%%   ", status, float64(completed)/float64(total)*100)
		} else {
			fmt.Printf("\r  %s   ", status)
		}
	}
}

// formatAccessInfo renders the post-setup access report: URLs and a
// command cheat sheet.
func formatAccessInfo(settings config.Settings) string {
	var b strings.Builder
	b.WriteString("\nSetup complete.\n\n")
	b.WriteString(fmt.Sprintf("  Web UI:            %s\n", settings.WebUIURL))
	b.WriteString(fmt.Sprintf("  Model server API:  %s\n", settings.OllamaURL))
	b.WriteString("\nRoutine maintenance:\n")
	b.WriteString("  ragstack menu            interactive maintenance menu\n")
	b.WriteString("  ragstack status          show stack status\n")
	b.WriteString("  ragstack logs ollama     follow model server logs\n")
	b.WriteString("  ragstack backup          archive the data volumes\n")
	return b.String()
}
