// Command coppice manages ephemeral git worktree environments with
// isolated port allocations.
package main

import (
	"github.com/mmr-tortoise/coppice/internal/cli"
)

// Injected at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%Y-%m-%d)"
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
