//go:build !windows

package output

import "fmt"

// OpenFolder is only implemented on Windows.
func OpenFolder(folder string) error {
	return fmt.Errorf("opening folders is not supported on this platform")
}

// OpenFile is only implemented on Windows.
func OpenFile(path string) error {
	return fmt.Errorf("opening files is not supported on this platform")
}
