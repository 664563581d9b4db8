// Package config holds the settings for the ragstack CLI.
//
// The shell scripts this tool replaces hard-coded the model names, ports,
// and thresholds as in-line literals. Here they live in an explicit
// Settings struct with defaults, overridable in two layers:
//
//  1. an optional ragstack.jsonc file in the working directory
//     (JSONC - comments and trailing commas allowed, parsed with
//     github.com/tidwall/jsonc before encoding/json)
//  2. RAGSTACK_* environment variables
//
// Command-line flags (handled in the cli package) take precedence over
// both layers.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"
)

// DefaultFile is the config file name searched in the working directory.
// A missing file is not an error - defaults apply.
const DefaultFile = "ragstack.jsonc"

// Settings describes everything the CLI needs to know about the stack.
// JSON tags define the ragstack.jsonc schema.
type Settings struct {
	// ComposeFile is the path to the Docker Compose definition of the stack.
	ComposeFile string `json:"composeFile"`

	// ProjectName is the Docker Compose project name. It namespaces the
	// stack's containers, network, and volumes, and is the label value used
	// to discover stack containers via the Docker API.
	ProjectName string `json:"projectName"`

	// PrimaryModel is the conversational model provisioned during setup.
	PrimaryModel string `json:"primaryModel"`

	// EmbeddingModel is the vector-embedding model provisioned during
	// setup, used by the web UI for document retrieval.
	EmbeddingModel string `json:"embeddingModel"`

	// OllamaURL is the base URL of the model server API.
	OllamaURL string `json:"ollamaUrl"`

	// WebUIURL is the address of the web interface, printed in the
	// final setup report. Informational only - nothing enforces it.
	WebUIURL string `json:"webUiUrl"`

	// OllamaVolume is the named volume holding model weights.
	OllamaVolume string `json:"ollamaVolume"`

	// WebUIVolume is the named volume holding web UI state.
	WebUIVolume string `json:"webUiVolume"`

	// BackupDir is the directory backup archives are written to.
	BackupDir string `json:"backupDir"`

	// DiskThresholdGB is the free-space threshold below which setup asks
	// for confirmation before continuing.
	DiskThresholdGB float64 `json:"diskThresholdGb"`

	// ReadinessAttempts bounds the model-server readiness poll.
	ReadinessAttempts int `json:"readinessAttempts"`

	// ReadinessIntervalSeconds is the delay between readiness attempts.
	ReadinessIntervalSeconds int `json:"readinessIntervalSeconds"`

	// SettleSeconds is the fixed delay between "compose up" and the first
	// service status check, giving containers time to register as running.
	SettleSeconds int `json:"settleSeconds"`

	// GPUProbeImage is the throwaway image used to verify GPU passthrough
	// during setup. Must carry nvidia-smi.
	GPUProbeImage string `json:"gpuProbeImage"`

	// BackupImage is the image used to tar volumes during backup.
	BackupImage string `json:"backupImage"`
}

// Default returns the built-in settings. These mirror the constants the
// original deployment scripts carried in-line.
func Default() Settings {
	return Settings{
		ComposeFile:              "docker-compose.yml",
		ProjectName:              "ragstack",
		PrimaryModel:             "llama3.1:8b",
		EmbeddingModel:           "nomic-embed-text",
		OllamaURL:                "http://localhost:11434",
		WebUIURL:                 "http://localhost:3000",
		OllamaVolume:             "ragstack-ollama",
		WebUIVolume:              "ragstack-webui",
		BackupDir:                "backups",
		DiskThresholdGB:          30,
		ReadinessAttempts:        30,
		ReadinessIntervalSeconds: 2,
		SettleSeconds:            5,
		GPUProbeImage:            "nvidia/cuda:12.4.1-base-ubuntu22.04",
		BackupImage:              "busybox:stable",
	}
}

// Load produces the effective settings: defaults, overlaid with the given
// config file (if it exists), overlaid with RAGSTACK_* environment
// variables. Pass an empty path to use DefaultFile.
func Load(path string) (Settings, error) {
	s := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	if err := s.applyFile(path, explicit); err != nil {
		return Settings{}, err
	}
	s.applyEnv()

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyFile overlays settings from a JSONC file. A missing file is only an
// error when the user named it explicitly; the default location is
// optional.
func (s *Settings) applyFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Strip comments and trailing commas, then parse with encoding/json.
	// Unknown keys are ignored; absent keys leave defaults untouched.
	if err := json.Unmarshal(jsonc.ToJSON(data), s); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays RAGSTACK_* environment variables. Only the settings
// worth flipping per-invocation are exposed this way; structural settings
// (volume names, images) belong in the config file.
func (s *Settings) applyEnv() {
	setString(&s.ComposeFile, "RAGSTACK_COMPOSE_FILE")
	setString(&s.ProjectName, "RAGSTACK_PROJECT")
	setString(&s.PrimaryModel, "RAGSTACK_PRIMARY_MODEL")
	setString(&s.EmbeddingModel, "RAGSTACK_EMBEDDING_MODEL")
	setString(&s.OllamaURL, "RAGSTACK_OLLAMA_URL")
	setString(&s.BackupDir, "RAGSTACK_BACKUP_DIR")
	setFloat(&s.DiskThresholdGB, "RAGSTACK_DISK_THRESHOLD_GB")
}

// setString assigns the environment variable's value if it is set and
// non-empty.
func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setFloat assigns the environment variable's value if it parses as a
// float. Unparseable values are ignored rather than fatal - a typo in an
// env var should not brick the maintenance menu.
func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Validate checks the settings for values that would make every
// operation fail in a confusing way.
func (s Settings) Validate() error {
	if s.ComposeFile == "" {
		return fmt.Errorf("config: composeFile must not be empty")
	}
	if s.ProjectName == "" {
		return fmt.Errorf("config: projectName must not be empty")
	}
	if s.OllamaURL == "" {
		return fmt.Errorf("config: ollamaUrl must not be empty")
	}
	if s.ReadinessAttempts < 1 {
		return fmt.Errorf("config: readinessAttempts must be at least 1, got %d", s.ReadinessAttempts)
	}
	if s.ReadinessIntervalSeconds < 1 {
		return fmt.Errorf("config: readinessIntervalSeconds must be at least 1, got %d", s.ReadinessIntervalSeconds)
	}
	if s.DiskThresholdGB < 0 {
		return fmt.Errorf("config: diskThresholdGb must not be negative, got %v", s.DiskThresholdGB)
	}
	return nil
}

// ReadinessInterval returns the readiness poll delay as a duration.
func (s Settings) ReadinessInterval() time.Duration {
	return time.Duration(s.ReadinessIntervalSeconds) * time.Second
}

// SettleDelay returns the post-startup settle delay as a duration.
func (s Settings) SettleDelay() time.Duration {
	return time.Duration(s.SettleSeconds) * time.Second
}

// Volumes returns the stack's named volumes in backup order.
func (s Settings) Volumes() []string {
	return []string{s.OllamaVolume, s.WebUIVolume}
}
