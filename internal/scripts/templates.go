package scripts

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/coppice/internal/config"
	"github.com/mmr-tortoise/coppice/internal/model"
)

// Starter script bodies written by init. Each is a commented skeleton
// the team fills in for their project.
var templates = map[string]string{
	SetupScript: `#!/bin/bash
# Runs once after the worktree is created.

set -e

echo "Setting up worktree: $WORKTREE_NAME"
echo "Allocated ports start at: $WORKTREE_PORT_0"

# Add setup commands here, for example:
# - npm install
# - cp .env.example .env, substituting allocated ports
# - database migrations

echo "Setup complete"
`,
	RunScript: `#!/bin/bash
# Starts the development environment for this worktree.

set -e

echo "Starting development environment for: $WORKTREE_DISPLAY_NAME"
echo "Using port: $WORKTREE_PORT_0"

# Add run commands here, for example:
# - npm run dev -- --port "$WORKTREE_PORT_0"
# - docker compose up -d

echo "Development environment started"
`,
	StopScript: `#!/bin/bash
# Stops services started by run.sh.

echo "Stopping services for: $WORKTREE_DISPLAY_NAME"

# Add stop commands here, for example:
# - pkill -f "node.*$WORKTREE_PORT_0"
# - docker compose down

echo "Services stopped"
`,
	CloseScript: `#!/bin/bash
# Final cleanup before the worktree is deleted.

echo "Cleaning up worktree: $WORKTREE_NAME"

# Add cleanup commands here, for example:
# - docker compose down -v
# - drop test databases

echo "Cleanup complete"
`,
}

// WriteTemplates writes the starter lifecycle scripts into root's
// project config directory, creating it if needed. Existing scripts are
// left alone so re-running init never clobbers customized hooks.
// Returns the names of the scripts actually written.
func WriteTemplates(root string) ([]string, error) {
	dir := config.ProjectConfigDirIn(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.IOError("create", dir, err)
	}

	var written []string
	for _, name := range []string{SetupScript, RunScript, StopScript, CloseScript} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(templates[name]), 0o755); err != nil {
			return nil, model.IOError("write", path, err)
		}
		written = append(written, name)
	}
	return written, nil
}
