// Package model defines the domain types shared across the ragstack CLI:
// stack/service status values, Ollama model metadata, backup archive
// records, and the CLIError type that carries process exit codes.
//
// Nothing in this package touches Docker or the network. All values are
// transient representations built from external command and API output -
// the stack itself (containers, volumes, models) is owned entirely by the
// container runtime and the model server.
package model
