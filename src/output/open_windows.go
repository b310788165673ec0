//go:build windows

package output

import (
	"fmt"
	"os"
	"os/exec"
)

// OpenFolder shows the screenshot folder in Explorer, creating it first so
// Explorer does not fail on a fresh install.
func OpenFolder(folder string) error {
	if folder == "" {
		folder = "."
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot folder: %w", err)
	}
	// Explorer returns a nonzero exit code even on success, so the error
	// from Run is not meaningful. Start and forget.
	return exec.Command("explorer.exe", folder).Start()
}

// OpenFile opens a saved screenshot with its associated viewer.
func OpenFile(path string) error {
	return exec.Command("cmd", "/c", "start", "", path).Start()
}
