package notification

import (
	"fmt"
	"log"
	"path/filepath"
)

// Notify shows a transient desktop notification. Failures are logged, never
// surfaced; a missed toast must not break a capture.
func Notify(title, message string) {
	go func() {
		if err := show(title, message); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// NotifySaved announces a delivered capture.
func NotifySaved(path string, clipboard bool) {
	switch {
	case path != "" && clipboard:
		Notify("Screenshot captured", fmt.Sprintf("Saved %s and copied to clipboard", filepath.Base(path)))
	case path != "":
		Notify("Screenshot captured", fmt.Sprintf("Saved %s", filepath.Base(path)))
	case clipboard:
		Notify("Screenshot captured", "Copied to clipboard")
	}
}

// NotifyNoTargets warns that both output targets are disabled.
func NotifyNoTargets() {
	Notify("Nothing to do", "Both clipboard and file output are disabled. Enable a target in the tray menu.")
}
