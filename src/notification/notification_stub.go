//go:build !windows

package notification

import "log"

func show(title, message string) error {
	log.Printf("%s: %s", title, message)
	return nil
}

// ShowBlockingError logs a blocking error message on non-Windows platforms.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}
