//go:build !windows

package dialog

// SelectFolder is unavailable off Windows.
func SelectFolder(title string) (path string, ok bool) {
	return "", false
}
