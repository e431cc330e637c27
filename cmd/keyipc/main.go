// CLI entry point for KeyIP-Continuity.
package main

import (
	"context"
	"os"

	"github.com/turtacn/KeyIP-Continuity/internal/app"
	"github.com/turtacn/KeyIP-Continuity/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	app.Version = version
	app.GitCommit = commit
	app.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
