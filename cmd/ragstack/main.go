// Command ragstack provisions and maintains a local two-container RAG
// stack: an Ollama model server and the Open WebUI front end, managed
// through Docker Compose.
package main

import (
	"github.com/mmr-tortoise/ragstack/internal/cli"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
