package model

import (
	"fmt"
	"strings"
	"time"
)

// StackStatus represents the aggregate lifecycle state of the RAG stack,
// derived from the states of its member containers:
//
//	running - every expected service has a running container
//	partial - at least one container is running, but not all of them
//	stopped - containers exist but none are running
//	absent  - no containers for the compose project exist at all
type StackStatus string

const (
	// StatusRunning indicates all services of the stack are up.
	StatusRunning StackStatus = "running"

	// StatusPartial indicates some but not all services are up. This is
	// usually a transient state during startup, or a crashed service.
	StatusPartial StackStatus = "partial"

	// StatusStopped indicates the stack exists but no container is running.
	StatusStopped StackStatus = "stopped"

	// StatusAbsent indicates no containers belong to the compose project.
	StatusAbsent StackStatus = "absent"
)

// String returns the string representation of StackStatus.
// Satisfies fmt.Stringer for direct use in CLI output.
func (s StackStatus) String() string {
	return string(s)
}

// IsValid checks whether the StackStatus value is one of the
// predefined states.
func (s StackStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusPartial, StatusStopped, StatusAbsent:
		return true
	default:
		return false
	}
}

// ParseStackStatus converts a string to a StackStatus.
// Returns an error if the string does not match any valid status.
func ParseStackStatus(s string) (StackStatus, error) {
	status := StackStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid stack status: %q (valid: running, partial, stopped, absent)", s)
	}
	return status, nil
}

// ServiceInfo holds runtime information about one container of the stack.
// This data is fetched from the Docker API on every query, never cached.
type ServiceInfo struct {
	// ContainerID is the Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name
	// (without the leading "/" the API prepends).
	ContainerName string `json:"containerName"`

	// ServiceName is the Docker Compose service name, taken from the
	// "com.docker.compose.service" label.
	ServiceName string `json:"serviceName"`

	// State is the short Docker container state ("running", "exited", ...).
	State string `json:"state"`

	// Status is the human-readable status line Docker reports,
	// e.g. "Up 2 hours" or "Exited (0) 3 minutes ago".
	Status string `json:"status"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`
}

// IsRunning reports whether the container's state is "running".
func (s ServiceInfo) IsRunning() bool {
	return s.State == "running"
}

// ModelInfo describes one model known to the model server, as reported
// by its tags endpoint.
type ModelInfo struct {
	// Name is the model identifier with tag, e.g. "llama3.1:8b".
	Name string `json:"name"`

	// Size is the on-disk size of the model in bytes.
	Size int64 `json:"size"`

	// Digest identifies the model contents.
	Digest string `json:"digest,omitempty"`

	// ModifiedAt is when the model was last pulled or created.
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ValidateModelName checks that a model name is plausible input for the
// model server: non-empty and free of whitespace. Anything further
// (registry existence, tag validity) is the server's concern - the name
// is passed through verbatim.
func ValidateModelName(name string) error {
	if name == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("invalid model name %q: must not contain whitespace", name)
	}
	return nil
}

// BackupArchive records one volume archive produced by the backup
// operation. The filename is the only metadata the backup keeps - there
// is no manifest, retention policy, or integrity check.
type BackupArchive struct {
	// VolumeName is the Docker named volume that was archived.
	VolumeName string `json:"volumeName"`

	// Path is the filesystem path of the produced .tar.gz file.
	Path string `json:"path"`

	// Size is the archive size in bytes, 0 if it could not be determined.
	Size int64 `json:"size"`

	// CreatedAt is the timestamp embedded in the archive filename,
	// with second granularity.
	CreatedAt time.Time `json:"createdAt"`
}

// ExitCode defines the process exit codes of the ragstack CLI.
// Scripts can rely on these to distinguish failure classes.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitRequirementMissing indicates a host requirement check failed
	// (docker binary, compose plugin, GPU passthrough).
	ExitRequirementMissing ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitDiskSpace indicates free disk space was below the threshold and
	// the user declined to continue.
	ExitDiskSpace ExitCode = 4

	// ExitReadinessTimeout indicates the model server did not become ready
	// within the readiness poll budget.
	ExitReadinessTimeout ExitCode = 5

	// ExitModelFailed indicates a model pull or remove operation failed.
	ExitModelFailed ExitCode = 6

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This lets command logic signal a failure class while the CLI layer
// translates it into a process exit code and a formatted message.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description. Guarded checks use
	// this to carry remediation hints ("known failure with guidance").
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
